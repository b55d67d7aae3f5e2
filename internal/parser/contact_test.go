package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"sentence", "Contact: jane.doe@example.com or call", "jane.doe@example.com"},
		{"plus and percent", "mail j+cv%1@mail.example.co.uk now", "j+cv%1@mail.example.co.uk"},
		{"first match wins", "a@x.com and b@y.org", "a@x.com"},
		{"tld too short", "user@host.c", ""},
		{"no at sign", "jane.doe at example.com", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractEmail(tt.text))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"dashes", "call 415-555-1234 today", "415-555-1234"},
		{"parenthesized area code", "Phone: (415) 555-1234", "(415) 555-1234"},
		{"country code with dots", "+1 415.555.1234", "+1 415.555.1234"},
		{"bare digits", "4155551234", "4155551234"},
		{"first match wins", "415-555-1234 / 212-555-9876", "415-555-1234"},
		{"too short", "555-1234", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPhone(tt.text))
		})
	}
}

func TestExtractContact(t *testing.T) {
	contact := ExtractContact("Contact: jane.doe@example.com or call 415-555-1234")

	assert.Equal(t, "jane.doe@example.com", contact.Email)
	assert.Equal(t, "415-555-1234", contact.Phone)
}

func TestExtractEmail_FirstMatchIsStableUnderAppend(t *testing.T) {
	a := "Jane Doe\njane@example.com\n"
	b := "Reference: boss@corp.example.org\n"

	assert.Equal(t, ExtractEmail(a), ExtractEmail(a+b))
}
