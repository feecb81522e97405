package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
)

const (
	// MaxFileSize is the upload size cap in bytes
	MaxFileSize = 10 * 1024 * 1024

	// MaxPDFPages bounds extraction work on adversarial documents
	MaxPDFPages = 100

	// pageTimeBudget is the soft per-page extraction budget. Pages exceeding
	// it are skipped, not fatal.
	pageTimeBudget = 5 * time.Second
)

var acceptedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var (
	magicPDF = []byte("%PDF")
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// DocumentExtractor converts uploaded resumes to plain text
type DocumentExtractor struct {
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewDocumentExtractor creates a document extractor
func NewDocumentExtractor(timeProvider coreport.TimeProvider, logger coreport.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Extract validates the upload and returns its text. Validation order follows
// cost: declared content type, size cap, then the magic-number sniff, so an
// oversized file is rejected before any parsing work.
func (e *DocumentExtractor) Extract(ctx context.Context, upload svcport.ResumeUpload) (*entity.ResumeDocument, error) {
	if !acceptedContentTypes[strings.ToLower(upload.ContentType)] {
		return nil, errs.ErrUnsupportedFile
	}
	if len(upload.Data) > MaxFileSize {
		return nil, errs.ErrFileTooLarge
	}
	if len(upload.Data) == 0 {
		return nil, errs.ErrCorruptFile
	}

	var text string
	var err error
	switch {
	case bytes.HasPrefix(upload.Data, magicPDF):
		text, err = e.extractPDF(ctx, upload.Data)
	case bytes.HasPrefix(upload.Data, magicZip), bytes.HasPrefix(upload.Data, magicOLE):
		text, err = e.extractWord(upload.Data)
	default:
		return nil, errs.ErrUnsupportedFile
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrCorruptFile
	}

	e.logger.Debug("Resume text extracted", map[string]any{
		"filename": upload.Filename,
		"bytes":    len(upload.Data),
		"chars":    len(text),
	})
	return &entity.ResumeDocument{Filename: upload.Filename, Text: text}, nil
}

// extractPDF pulls the plain text of every page, skipping pages that exceed
// the per-page time budget
func (e *DocumentExtractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCorruptFile, err)
	}

	if reader.NumPage() > MaxPDFPages {
		return "", fmt.Errorf("%w: document exceeds %d pages", errs.ErrFileTooLarge, MaxPDFPages)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		pageText, err := e.extractPage(ctx, reader, pageNum)
		if err != nil {
			e.logger.Warn("Skipping unreadable PDF page", map[string]any{
				"page":  pageNum,
				"error": err.Error(),
			})
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// extractPage runs one page extraction under the soft time budget
func (e *DocumentExtractor) extractPage(ctx context.Context, reader *pdf.Reader, pageNum int) (string, error) {
	type pageResult struct {
		text string
		err  error
	}

	budgetCtx, cancel := e.timeProvider.WithTimeout(ctx, pageTimeBudget)
	defer cancel()

	resultCh := make(chan pageResult, 1)
	go func() {
		defer func() {
			// Malformed page content can panic inside the parser
			if r := recover(); r != nil {
				resultCh <- pageResult{err: fmt.Errorf("page parser panic: %v", r)}
			}
		}()
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			resultCh <- pageResult{err: fmt.Errorf("page %d is missing", pageNum)}
			return
		}
		text, err := page.GetPlainText(nil)
		resultCh <- pageResult{text: text, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.text, result.err
	case <-budgetCtx.Done():
		return "", fmt.Errorf("page %d exceeded extraction budget", pageNum)
	}
}

// extractWord reads the paragraphs of a Word document. Legacy OLE documents
// fail the docx parse and are reported as corrupt, matching how the rest of
// the pipeline treats unparseable uploads.
func (e *DocumentExtractor) extractWord(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCorruptFile, err)
	}

	var builder strings.Builder
	for _, item := range doc.Document.Body.Items {
		if paragraph, ok := item.(*docx.Paragraph); ok {
			builder.WriteString(paragraph.String())
			builder.WriteString("\n")
		}
	}

	return builder.String(), nil
}
