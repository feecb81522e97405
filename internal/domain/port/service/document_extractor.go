package service

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// ResumeUpload carries the raw bytes of an uploaded resume
type ResumeUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentExtractor converts an uploaded resume into plain text
type DocumentExtractor interface {
	// Extract validates and parses the upload
	//
	// Possible errors:
	// - ErrFileTooLarge: if the upload exceeds the configured size cap
	// - ErrUnsupportedFile: for content types other than PDF/DOC/DOCX
	// - ErrCorruptFile: if the content cannot be parsed
	Extract(ctx context.Context, upload ResumeUpload) (*entity.ResumeDocument, error)
}
