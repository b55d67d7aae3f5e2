package cli

import (
	"resumeparser/internal/common"
	"resumeparser/internal/inbox"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Parse resumes as they arrive in a directory",
	Long: `Watch a directory and parse every resume created or rewritten in it.

Each document is parsed once its writes settle and the result is written
next to it, or into --out, as <name>.<format>. Hidden and temporary files
are ignored. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if watchConfig.Format == "" {
			watchConfig.Format = "json"
		}
		if err := common.ValidateOutputFormat(watchConfig.Format, cfg.App.SupportedFormats); err != nil {
			return err
		}
		return common.ValidateMIMEOverride(watchConfig.MIMEType)
	},
	RunE: runWatch,
}

var watchConfig inbox.Config

func init() {
	watchCmd.Flags().StringVar(&watchConfig.OutDir, "out", "", "Directory receiving results (default: the watched directory)")
	watchCmd.Flags().StringVar(&watchConfig.Format, "format", "", "Output format: json, yaml, text or markdown (default: json)")
	watchCmd.Flags().StringVar(&watchConfig.MIMEType, "mime", "", "Document MIME type, skips detection")
	watchCmd.Flags().BoolVar(&watchConfig.ScanExisting, "existing", false, "Also parse documents already in the directory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	om, shutdown, err := startObservability(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	svc, err := newService(cfg, logger, om.GetMetrics())
	if err != nil {
		return err
	}

	watchCfg := watchConfig
	watchCfg.Dir = args[0]
	watchCfg.Extensions = cfg.Inbox.Extensions
	watchCfg.DebounceDelay = cfg.Inbox.DebounceDelay

	watcher := inbox.New(watchCfg, svc,
		common.NewFileProcessor(logger, cfg.App.MaxFileSize, cfg.Inbox.Extensions),
		common.NewOutputHandler(logger, nil),
		logger)
	return watcher.Run(cmd.Context())
}
