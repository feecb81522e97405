package service

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// JobFetcher downloads job postings and strips them to plain text.
// URLs that fail to fetch are skipped; FetchAll only errors when no
// description could be retrieved at all.
type JobFetcher interface {
	FetchAll(ctx context.Context, urls []string) ([]entity.JobDescription, error)
}
