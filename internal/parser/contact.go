package parser

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Optional +CC prefix, optional parenthesized area code, then a 3-3-4
	// grouping separated by space, dot or hyphen.
	phonePattern = regexp.MustCompile(`(?:\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// Contact holds the contact fields found in a document
type Contact struct {
	Email string
	Phone string
}

// ExtractEmail returns the leftmost email address in text, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the leftmost phone number in text, or "".
func ExtractPhone(text string) string {
	return phonePattern.FindString(text)
}

// ExtractContact runs both contact extractors over the full text
func ExtractContact(text string) Contact {
	return Contact{
		Email: ExtractEmail(text),
		Phone: ExtractPhone(text),
	}
}
