package decode

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"resumeparser/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// minPrintableRun is the shortest byte run kept when scraping legacy .doc files
const minPrintableRun = 4

var (
	xmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	docxLineBreaks  = strings.NewReplacer("</w:p>", "\n", "<w:br/>", "\n", "<w:tab/>", "\t", "<w:cr/>", "\n")
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// LocalDecoder extracts text in-process. It never rejects a media type:
// anything it cannot read as a document is treated as text.
type LocalDecoder struct {
	logger *errors.Logger
}

var _ Decoder = (*LocalDecoder)(nil)

// NewLocalDecoder creates an in-process decoder
func NewLocalDecoder(logger *errors.Logger) *LocalDecoder {
	if logger == nil {
		logger = errors.Discard()
	}
	return &LocalDecoder{logger: logger}
}

// Name implements Decoder
func (d *LocalDecoder) Name() string { return "local" }

// Decode implements Decoder
func (d *LocalDecoder) Decode(ctx context.Context, data []byte, mimeType string) (string, error) {
	_, span := otel.Tracer("resumeparser.decode").Start(ctx, "decode.local")
	defer span.End()

	mt := baseType(mimeType)
	span.SetAttributes(
		attribute.String("decode.mime", mt),
		attribute.Int("decode.bytes", len(data)),
	)

	var (
		text string
		err  error
	)
	switch mt {
	case MIMEPDF:
		text, err = extractPDF(data)
	case MIMEDOCX:
		text, err = extractDOCX(data)
	case MIMEDOC:
		text, err = extractDOC(data)
	default:
		text = extractText(data)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		d.logger.LogError(err, "Local decode failed", "mime", mt, "bytes", len(data))
		return "", err
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("decode.chars", len(text)))
	d.logger.Debug("Document decoded", "decoder", d.Name(), "mime", mt, "bytes", len(data), "chars", len(text))
	return text, nil
}

// extractPDF reads the text of every page row by row so that line structure
// survives for the parser
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewDecodeError(errors.ErrCodeDecodeFailed, "Failed to read PDF document",
				fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewDecodeError(errors.ErrCodeDecodeFailed, "Failed to read PDF document", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			plain, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				continue
			}
			sb.WriteString(plain)
			sb.WriteString("\n")
			continue
		}

		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// extractDOCX pulls paragraph text out of the document XML
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewDecodeError(errors.ErrCodeDecodeFailed, "Failed to read DOCX document", err)
	}
	defer func() { _ = doc.Close() }()

	return stripDocumentXML(doc.Editable().GetContent()), nil
}

// stripDocumentXML converts WordprocessingML to plain text lines
func stripDocumentXML(content string) string {
	content = docxLineBreaks.Replace(content)
	content = xmlTagPattern.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return blankRunPattern.ReplaceAllString(content, "\n\n")
}

// extractDOC handles legacy Word files. Files that are really DOCX are read
// as such; true binary files are scraped for printable runs.
func extractDOC(data []byte) (string, error) {
	if text, err := extractDOCX(data); err == nil {
		return text, nil
	}

	text := printableRuns(data, minPrintableRun)
	if strings.TrimSpace(text) == "" {
		return "", errors.NewDecodeError(errors.ErrCodeDecodeFailed, "Failed to read DOC document",
			fmt.Errorf("no printable text found in %d bytes", len(data)))
	}
	return text, nil
}

// printableRuns returns runs of printable ASCII of at least minRun bytes, one
// per line. NUL bytes are skipped so UTF-16LE text reads as ASCII.
func printableRuns(data []byte, minRun int) string {
	var (
		out strings.Builder
		run []byte
	)
	flush := func() {
		if len(strings.TrimSpace(string(run))) >= minRun {
			out.Write(bytes.TrimSpace(run))
			out.WriteByte('\n')
		}
		run = run[:0]
	}

	for _, b := range data {
		switch {
		case b == 0x00:
			continue
		case b == '\r' || b == '\n':
			flush()
		case b == '\t' || (b >= 0x20 && b < 0x7f):
			run = append(run, b)
		default:
			flush()
		}
	}
	flush()

	return out.String()
}

// extractText reads data as UTF-8, replacing invalid sequences and a leading BOM
func extractText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}
