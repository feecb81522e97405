package jobfetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

const (
	requestTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; cvmatch/1.0)"

	// maxTextLength caps how much page text reaches the prompt
	maxTextLength = 20000
)

// JobFetcher downloads job postings and strips them to plain text
type JobFetcher struct {
	client *resty.Client
	logger coreport.Logger
}

// NewJobFetcher creates a job fetcher
func NewJobFetcher(logger coreport.Logger) *JobFetcher {
	client := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &JobFetcher{
		client: client,
		logger: logger,
	}
}

// FetchAll fetches every link concurrently. Individual failures are logged
// and skipped; the call only fails when no link could be fetched.
func (f *JobFetcher) FetchAll(ctx context.Context, urls []string) ([]entity.JobDescription, error) {
	results := make([]*entity.JobDescription, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			job, err := f.fetchOne(ctx, url)
			if err != nil {
				f.logger.Warn("Failed to fetch job page", map[string]any{
					"url":   url,
					"error": err.Error(),
				})
				return
			}
			results[i] = job
		}(i, url)
	}
	wg.Wait()

	jobs := make([]entity.JobDescription, 0, len(urls))
	for _, job := range results {
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	if len(jobs) == 0 {
		return nil, errs.ErrJobFetchFailed
	}
	return jobs, nil
}

// fetchOne downloads a single page and extracts its visible text
func (f *JobFetcher) fetchOne(ctx context.Context, url string) (*entity.JobDescription, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	text, err := extractVisibleText(resp.Body())
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("page has no extractable text")
	}

	return &entity.JobDescription{URL: url, Text: text}, nil
}

// extractVisibleText strips markup, scripts and styles from an HTML page
func extractVisibleText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, iframe").Remove()

	text := doc.Find("body").Text()
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	return text, nil
}
