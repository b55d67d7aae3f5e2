package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumeparser/internal/types"

	"github.com/goccy/go-yaml"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "ParsedResumeData", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ParsedResumeData", &ResumeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParsedResumeData, *types.ParsedResumeData:
		return "ParsedResumeData"
	default:
		return "any"
	}
}

func asResume(data any) (types.ParsedResumeData, error) {
	switch v := data.(type) {
	case types.ParsedResumeData:
		return v, nil
	case *types.ParsedResumeData:
		if v != nil {
			return *v, nil
		}
	}
	return types.ParsedResumeData{}, fmt.Errorf("expected ParsedResumeData, got %T", data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(yamlData), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// ResumeTextFormatter renders a parsed resume as plain text
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	result, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	info := result.PersonalInfo

	output.WriteString("=== PERSONAL INFO ===\n")
	output.WriteString(fmt.Sprintf("Name:  %s\n", info.Name))
	output.WriteString(fmt.Sprintf("Email: %s\n", info.Email))
	output.WriteString(fmt.Sprintf("Phone: %s\n", info.Phone))
	if len(info.Summary) > 0 {
		output.WriteString("\nSummary:\n")
		for _, line := range info.Summary {
			output.WriteString(line)
			output.WriteString("\n")
		}
	}

	output.WriteString("\n=== EXPERIENCE ===\n")
	for i, exp := range result.Experiences {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("%s at %s (%s)\n", exp.Title, exp.Company, exp.Period))
		for _, line := range exp.Description {
			output.WriteString(fmt.Sprintf("  - %s\n", line))
		}
	}

	output.WriteString("\n=== EDUCATION ===\n")
	for _, edu := range result.Education {
		output.WriteString(fmt.Sprintf("%s, %s (%s)\n", edu.Degree, edu.Institution, edu.Year))
	}

	output.WriteString("\n=== SKILLS ===\n")
	output.WriteString(strings.Join(result.Skills, ", "))
	output.WriteString("\n")

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ParsedResumeData"
}

// ResumeMarkdownFormatter renders a parsed resume as Markdown
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	result, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	info := result.PersonalInfo

	output.WriteString(fmt.Sprintf("# %s\n\n", info.Name))
	output.WriteString(fmt.Sprintf("**Email:** %s  \n", info.Email))
	output.WriteString(fmt.Sprintf("**Phone:** %s\n\n", info.Phone))

	if len(info.Summary) > 0 {
		output.WriteString("## Summary\n\n")
		output.WriteString(strings.Join(info.Summary, "\n"))
		output.WriteString("\n\n")
	}

	output.WriteString("## Experience\n\n")
	for _, exp := range result.Experiences {
		output.WriteString(fmt.Sprintf("### %s, %s\n", exp.Title, exp.Company))
		output.WriteString(fmt.Sprintf("*%s*\n\n", exp.Period))
		for _, line := range exp.Description {
			output.WriteString(fmt.Sprintf("- %s\n", line))
		}
		if len(exp.Description) > 0 {
			output.WriteString("\n")
		}
	}

	if len(result.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, edu := range result.Education {
			output.WriteString(fmt.Sprintf("- **%s**, %s (%s)\n", edu.Degree, edu.Institution, edu.Year))
		}
		output.WriteString("\n")
	}

	if len(result.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		for _, skill := range result.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	}

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ParsedResumeData"
}
