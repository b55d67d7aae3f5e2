package parser

import (
	"time"
	"unicode/utf8"

	"resumeparser/internal/errors"
	"resumeparser/internal/types"
)

const (
	// DefaultMaxInputBytes caps how much raw text is parsed
	DefaultMaxInputBytes = 1 << 20
	// DefaultMaxLineLength caps how long a line may be before it is skipped by the date patterns
	DefaultMaxLineLength = 500
)

// Fallback values substituted when a field cannot be recovered.
const (
	PlaceholderName        = "Your Name"
	PlaceholderTitle       = "Extracted Position"
	PlaceholderCompany     = "Company Name"
	PlaceholderPeriod      = "2020 - Present"
	PlaceholderDescription = "Responsibilities and achievements extracted from your resume."
	PlaceholderSummary     = "Professional summary extracted from your resume."
	PlaceholderDegree      = "Bachelor's Degree"
	PlaceholderInstitution = "University Name"
	PlaceholderYear        = "2020"
)

// PlaceholderSkills is the fixed skills list of every parsed resume
var PlaceholderSkills = []string{"Communication", "Problem Solving", "Teamwork", "Leadership", "Time Management"}

// Options tunes input hardening.
type Options struct {
	MaxInputBytes int
	MaxLineLength int
}

// DefaultOptions returns the default parser options
func DefaultOptions() Options {
	return Options{
		MaxInputBytes: DefaultMaxInputBytes,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Report describes what a single parse recovered and what fell back.
type Report struct {
	NameFound       bool
	EmailFound      bool
	PhoneFound      bool
	SectionFound    bool
	ExperienceCount int
	Truncated       bool
	InputBytes      int
	Duration        time.Duration
}

// Fallbacks lists the fields that were replaced by placeholders
func (r Report) Fallbacks() []string {
	var fields []string
	if !r.NameFound {
		fields = append(fields, "name")
	}
	if r.ExperienceCount == 0 {
		fields = append(fields, "experiences")
	}
	return fields
}

// Extracted lists the fields recovered from the text
func (r Report) Extracted() []string {
	var fields []string
	if r.NameFound {
		fields = append(fields, "name")
	}
	if r.EmailFound {
		fields = append(fields, "email")
	}
	if r.PhoneFound {
		fields = append(fields, "phone")
	}
	if r.ExperienceCount > 0 {
		fields = append(fields, "experiences")
	}
	return fields
}

// Parser turns raw resume text into ParsedResumeData. It holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	opts      Options
	segmenter segmenter
	logger    *errors.Logger
}

// New creates a parser. Zero option values fall back to the defaults.
// logger may be nil.
func New(opts Options, logger *errors.Logger) *Parser {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = DefaultMaxInputBytes
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	return &Parser{
		opts:      opts,
		segmenter: segmenter{maxLineLength: opts.MaxLineLength},
		logger:    logger,
	}
}

// Options returns the effective options
func (p *Parser) Options() Options {
	return p.opts
}

// Parse extracts a profile from raw. It never fails.
func (p *Parser) Parse(raw string) types.ParsedResumeData {
	data, _ := p.ParseWithReport(raw)
	return data
}

// ParseWithReport is Parse plus a summary of what was recovered.
func (p *Parser) ParseWithReport(raw string) (types.ParsedResumeData, Report) {
	start := time.Now()
	report := Report{InputBytes: len(raw)}

	raw, report.Truncated = truncate(raw, p.opts.MaxInputBytes)

	lines := NormalizeLines(raw)
	contact := ExtractContact(raw)
	name := DetectName(lines)
	span := LocateSection(raw, ExperienceHeaders)
	experiences := p.segmenter.segment(raw, span)

	report.NameFound = name != ""
	report.EmailFound = contact.Email != ""
	report.PhoneFound = contact.Phone != ""
	report.SectionFound = span.Found()
	report.ExperienceCount = len(experiences)

	if name == "" {
		name = PlaceholderName
	}
	if len(experiences) == 0 {
		experiences = []types.ExperienceEntry{placeholderExperience()}
	}

	data := types.ParsedResumeData{
		PersonalInfo: types.PersonalInfo{
			Name:    name,
			Email:   contact.Email,
			Phone:   contact.Phone,
			Summary: []string{PlaceholderSummary},
		},
		Experiences: experiences,
		Education: []types.EducationEntry{{
			Degree:      PlaceholderDegree,
			Institution: PlaceholderInstitution,
			Year:        PlaceholderYear,
		}},
		Skills: append([]string(nil), PlaceholderSkills...),
	}

	report.Duration = time.Since(start)
	if p.logger != nil {
		p.logger.Debug("Resume parsed",
			"input_bytes", report.InputBytes,
			"truncated", report.Truncated,
			"lines", len(lines),
			"name_found", report.NameFound,
			"email_found", report.EmailFound,
			"phone_found", report.PhoneFound,
			"section_found", report.SectionFound,
			"experiences", report.ExperienceCount,
			"duration", report.Duration)
	}

	return data, report
}

// ParseResume parses raw with default options and no logging.
func ParseResume(raw string) types.ParsedResumeData {
	return New(DefaultOptions(), nil).Parse(raw)
}

func placeholderExperience() types.ExperienceEntry {
	return types.ExperienceEntry{
		Title:       PlaceholderTitle,
		Company:     PlaceholderCompany,
		Period:      PlaceholderPeriod,
		Description: []string{PlaceholderDescription},
	}
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
