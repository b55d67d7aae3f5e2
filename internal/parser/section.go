package parser

import "strings"

// NotFound is the SectionSpan start sentinel for a missing section
const NotFound = -1

var (
	// ExperienceHeaders are tried in order; the first one found wins.
	ExperienceHeaders = []string{
		"experience",
		"work experience",
		"employment",
		"work history",
		"professional experience",
	}

	// NextSectionHeaders bound a section from below.
	NextSectionHeaders = []string{
		"education",
		"skills",
		"projects",
		"awards",
		"certifications",
	}
)

// SectionSpan is a byte range [Start, End) of the raw text belonging to one
// section. Start == NotFound means the section was not located and End is
// meaningless.
type SectionSpan struct {
	Start int
	End   int
}

// Found reports whether the span locates a section
func (s SectionSpan) Found() bool {
	return s.Start != NotFound
}

// LocateSection finds the span of the section introduced by the first of
// headers present in raw. Matching is a case-insensitive substring search.
func LocateSection(raw string, headers []string) SectionSpan {
	lower := lowerASCII(raw)

	start := NotFound
	for _, header := range headers {
		if idx := strings.Index(lower, header); idx >= 0 {
			start = idx
			break
		}
	}
	if start == NotFound {
		return SectionSpan{Start: NotFound, End: NotFound}
	}

	end := len(raw)
	tail := lower[start+1:]
	for _, header := range NextSectionHeaders {
		if idx := strings.Index(tail, header); idx >= 0 {
			if offset := start + 1 + idx; offset < end {
				end = offset
			}
		}
	}

	return SectionSpan{Start: start, End: end}
}
