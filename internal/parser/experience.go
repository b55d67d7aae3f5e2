package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resumeparser/internal/types"
)

// Length bounds in characters, inclusive.
const (
	minTitleLength   = 3
	maxTitleLength   = 49
	maxCompanyLength = 59
)

const monthAlt = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var (
	monthRangePattern = regexp.MustCompile(`(?i)` + monthAlt + `\s+\d{4}\s*[-–—]\s*(?:` + monthAlt + `\s+\d{4}|present|current)`)
	yearRangePattern  = regexp.MustCompile(`(?i)\d{4}\s*[-–—]\s*(?:\d{4}|present|current)`)
)

// MatchDateRange returns the first date range in line. Month-name ranges
// ("Jan 2020 - Present") are preferred over bare year ranges ("2018 – 2020").
func MatchDateRange(line string) (string, bool) {
	if m := monthRangePattern.FindString(line); m != "" {
		return m, true
	}
	if m := yearRangePattern.FindString(line); m != "" {
		return m, true
	}
	return "", false
}

// SegmentExperience walks the lines inside span and groups them into
// experience entries. Lines longer than DefaultMaxLineLength are never
// tested as date ranges.
func SegmentExperience(raw string, span SectionSpan) []types.ExperienceEntry {
	return segmenter{maxLineLength: DefaultMaxLineLength}.segment(raw, span)
}

type segmenter struct {
	maxLineLength int
}

// pending is the single in-progress entry plus the lines it consumed
type pending struct {
	entry    types.ExperienceEntry
	consumed []string
}

func (s segmenter) segment(raw string, span SectionSpan) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	if !span.Found() || span.End <= span.Start {
		return entries
	}

	var current *pending
	for _, line := range NormalizeLines(raw[span.Start:span.End]) {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "experience") || strings.Contains(lower, "employment") {
			continue
		}

		length := utf8.RuneCountInString(line)
		period, dated := s.matchDate(line, length)

		switch {
		case dated && current != nil:
			current.entry.Period = period
		case current == nil && length >= minTitleLength && length <= maxTitleLength && !ContainsDigit(line):
			current = &pending{entry: types.ExperienceEntry{Title: line, Description: []string{}}}
		case current != nil && current.entry.Company == "" && length <= maxCompanyLength:
			current.entry.Company = line
		case current != nil:
			current.entry.Description = append(current.entry.Description, line)
		}

		if current == nil {
			continue
		}
		current.consumed = append(current.consumed, line)

		if current.entry.Complete() {
			entries = append(entries, current.entry)
			current = nil
		}
	}

	// A trailing entry that never completed is made of the bullet lines of
	// the last completed entry.
	if current != nil && len(entries) > 0 {
		last := &entries[len(entries)-1]
		last.Description = append(last.Description, current.consumed...)
	}

	return entries
}

func (s segmenter) matchDate(line string, length int) (string, bool) {
	if s.maxLineLength > 0 && length > s.maxLineLength {
		return "", false
	}
	return MatchDateRange(line)
}
