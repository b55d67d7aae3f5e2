package decode

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var extensionTypes = map[string]string{
	".pdf":      MIMEPDF,
	".docx":     MIMEDOCX,
	".doc":      MIMEDOC,
	".txt":      MIMEText,
	".text":     MIMEText,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
}

// DetectMIME resolves the media type of a document. A specific declared type
// wins; otherwise the content is sniffed and the filename extension settles
// containers the sniffer cannot tell apart.
func DetectMIME(data []byte, declared, filename string) string {
	if mt := baseType(declared); mt != "" && mt != MIMEBinary {
		return mt
	}

	sniffed := MIMEBinary
	if len(data) > 0 {
		sniffed = baseType(mimetype.Detect(data).String())
	}

	switch sniffed {
	case MIMEBinary, "application/zip", "application/x-ole-storage":
		if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return mt
		}
	}
	return sniffed
}

// IsText reports whether mimeType carries plain text
func IsText(mimeType string) bool {
	return strings.HasPrefix(baseType(mimeType), "text/")
}

// baseType strips parameters such as charset from a media type
func baseType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0]))
	}
	return mt
}
