package service

import (
	"context"
	"testing"

	"resumeparser/internal/decode"
	"resumeparser/internal/errors"
	"resumeparser/internal/parser"
	"resumeparser/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Doe
jane.doe@example.com
+1 555 123 4567

Experience
Software Engineer
Acme Corp
2019 - 2023
Built billing APIs

Education
BSc Computer Science`

type failingDecoder struct{}

func (failingDecoder) Name() string { return "failing" }

func (failingDecoder) Decode(context.Context, []byte, string) (string, error) {
	return "", errors.NewDecodeError(errors.ErrCodeDecodeFailed, "boom", nil)
}

func newService(opts ...Option) *Service {
	return New(decode.NewLocalDecoder(nil), parser.New(parser.DefaultOptions(), nil), nil, opts...)
}

func TestService_ParseText(t *testing.T) {
	result := newService().ParseText(context.Background(), SourceText, resumeText)

	assert.Equal(t, "Jane Doe", result.Data.PersonalInfo.Name)
	assert.Equal(t, "jane.doe@example.com", result.Data.PersonalInfo.Email)
	require.Len(t, result.Data.Experiences, 1)
	assert.Equal(t, "Software Engineer", result.Data.Experiences[0].Title)
	assert.True(t, result.Report.SectionFound)
	assert.Equal(t, decode.MIMEText, result.MIMEType)
}

func TestService_ParseFile(t *testing.T) {
	result, err := newService().ParseFile(context.Background(), SourceFile, types.ParseFileInput{
		Filename: "cv.txt",
		Data:     []byte(resumeText),
	})

	require.NoError(t, err)
	assert.Equal(t, decode.MIMEText, result.MIMEType)
	assert.Equal(t, "Jane Doe", result.Data.PersonalInfo.Name)
	assert.Equal(t, 1, result.Report.ExperienceCount)
}

func TestService_ParseFileTooLarge(t *testing.T) {
	_, err := newService(WithMaxFileSize(10)).ParseFile(context.Background(), SourceFile, types.ParseFileInput{
		Filename: "cv.txt",
		Data:     []byte(resumeText),
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, errors.ErrCodeFileTooLarge, errors.CodeOf(err))
}

func TestService_ParseFileDecodeError(t *testing.T) {
	svc := New(failingDecoder{}, parser.New(parser.DefaultOptions(), nil), errors.Discard())

	result, err := svc.ParseFile(context.Background(), SourceFile, types.ParseFileInput{
		Filename: "cv.pdf",
		MIMEType: decode.MIMEPDF,
		Data:     []byte("%PDF"),
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDecodeFailed, errors.CodeOf(err))
	assert.Equal(t, decode.MIMEPDF, result.MIMEType)
}

func TestService_Accessors(t *testing.T) {
	svc := newService()

	assert.Equal(t, "local", svc.Decoder().Name())
	assert.Equal(t, parser.DefaultOptions(), svc.Parser().Options())
}
