package extractor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
	timeadapter "github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/time"
)

func newExtractor() *DocumentExtractor {
	return NewDocumentExtractor(timeadapter.NewRealTimeProvider(), logger.NewNoopLogger())
}

func pdfUpload(data []byte) svcport.ResumeUpload {
	return svcport.ResumeUpload{
		Filename:    "resume.pdf",
		ContentType: "application/pdf",
		Data:        data,
	}
}

func TestDocumentExtractor_Extract(t *testing.T) {
	ctx := context.Background()

	t.Run("Undeclared content type is rejected", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, svcport.ResumeUpload{
			Filename:    "resume.txt",
			ContentType: "text/plain",
			Data:        []byte("plain text resume"),
		})

		assert.ErrorIs(t, err, errs.ErrUnsupportedFile)
	})

	t.Run("Oversized file is rejected before parsing", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), MaxFileSize+1)

		_, err := newExtractor().Extract(ctx, pdfUpload(big))

		assert.ErrorIs(t, err, errs.ErrFileTooLarge)
	})

	t.Run("Empty upload is corrupt", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, pdfUpload(nil))

		assert.ErrorIs(t, err, errs.ErrCorruptFile)
	})

	t.Run("Declared PDF without the PDF magic is unsupported", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, pdfUpload([]byte("GIF89a not a resume")))

		assert.ErrorIs(t, err, errs.ErrUnsupportedFile)
	})

	t.Run("PDF magic with garbage body is corrupt", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, pdfUpload([]byte("%PDF-1.4 garbage with no xref")))

		assert.ErrorIs(t, err, errs.ErrCorruptFile)
	})

	t.Run("Zip magic with garbage body is corrupt", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, svcport.ResumeUpload{
			Filename:    "resume.docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        append([]byte("PK\x03\x04"), []byte("not really a zip")...),
		})

		assert.ErrorIs(t, err, errs.ErrCorruptFile)
	})

	t.Run("Legacy OLE document that fails the parse is corrupt", func(t *testing.T) {
		_, err := newExtractor().Extract(ctx, svcport.ResumeUpload{
			Filename:    "resume.doc",
			ContentType: "application/msword",
			Data:        append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte("legacy word body")...),
		})

		assert.ErrorIs(t, err, errs.ErrCorruptFile)
	})
}
