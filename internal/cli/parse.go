package cli

import (
	"resumeparser/internal/common"
	"resumeparser/internal/formatters"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file...]",
	Short: "Parse one or more resumes",
	Long: `Parse resumes into a structured profile.

Supported inputs are PDF, DOCX, DOC, plain text and Markdown. The document
type is detected from its content; use --mime to override detection.

With a single file the result is written to stdout or to --output. With
several files --output names a directory that receives one result per input.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		return common.ValidateMIMEOverride(parseConfig.MIMEType)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file, or directory when parsing several files (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, yaml, text or markdown")
	parseCmd.Flags().StringVar(&parseConfig.MIMEType, "mime", "", "Document MIME type, skips detection")

	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.NewFormatterRegistry().GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := newService(cfg, logger, nil)
	if err != nil {
		return err
	}

	output := common.NewOutputHandler(logger, nil)
	output.SetOutput(cmd.OutOrStdout())

	runner := &common.ParseRunner{
		Service: svc,
		Files:   common.NewFileProcessor(logger, cfg.App.MaxFileSize, cfg.Inbox.Extensions),
		Output:  output,
		Logger:  logger,
	}
	return runner.Run(cmd.Context(), parseConfig, args)
}
