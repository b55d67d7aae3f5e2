package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// NameScanLines is how many leading lines are considered for the name
	NameScanLines = 5

	maxNameLength = 40
)

// Tried in order for every candidate line.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s[A-Z][a-z]+){1,2}$`), // Jane Doe, Jane Ann Doe
	regexp.MustCompile(`^[A-Z]+\s[A-Z]+$`),                    // JANE DOE
	regexp.MustCompile(`^[A-Z]\.\s[A-Z][a-z]+$`),              // J. Doe
}

var nameStopWords = []string{"resume", "curriculum", "vitae"}

// DetectName returns the first of the leading lines shaped like a person's
// name, or "" when none is found.
func DetectName(lines []string) string {
	for i, line := range lines {
		if i >= NameScanLines {
			break
		}
		if rejectNameCandidate(line) {
			continue
		}
		if MatchNameShape(line) {
			return line
		}
	}
	return ""
}

// MatchNameShape reports whether line matches any of the name patterns
func MatchNameShape(line string) bool {
	for _, pattern := range namePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// rejectNameCandidate filters out lines that look like metadata
func rejectNameCandidate(line string) bool {
	if utf8.RuneCountInString(line) > maxNameLength {
		return true
	}
	if strings.Contains(line, "@") || ContainsDigit(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, word := range nameStopWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
