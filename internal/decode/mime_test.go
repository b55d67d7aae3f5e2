package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIME(t *testing.T) {
	docxBytes := buildDOCX(t, "<w:p><w:r><w:t>Jane</w:t></w:r></w:p>")

	tests := []struct {
		name     string
		data     []byte
		declared string
		filename string
		expected string
	}{
		{
			name:     "declared type wins",
			data:     []byte("plain words"),
			declared: MIMEPDF,
			expected: MIMEPDF,
		},
		{
			name:     "declared parameters are dropped",
			data:     []byte("plain words"),
			declared: "text/plain; charset=utf-8",
			expected: MIMEText,
		},
		{
			name:     "octet-stream falls back to sniffing",
			data:     []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"),
			declared: MIMEBinary,
			filename: "cv.bin",
			expected: MIMEPDF,
		},
		{
			name:     "plain text is sniffed",
			data:     []byte("Jane Doe\njane@example.com\n"),
			expected: MIMEText,
		},
		{
			name:     "docx container",
			data:     docxBytes,
			filename: "cv.docx",
			expected: MIMEDOCX,
		},
		{
			name:     "empty data uses the extension",
			filename: "CV.MD",
			expected: MIMEMarkdown,
		},
		{
			name:     "unknown binary without extension",
			data:     []byte{0x00, 0x01, 0x02, 0x03},
			expected: MIMEBinary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMIME(tt.data, tt.declared, tt.filename))
		})
	}
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText("text/plain"))
	assert.True(t, IsText("text/markdown; charset=utf-8"))
	assert.False(t, IsText(MIMEPDF))
	assert.False(t, IsText(""))
}
