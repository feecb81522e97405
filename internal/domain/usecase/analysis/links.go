package analysis

import (
	"net/url"
	"strings"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
)

// MaxJobLinks is the maximum number of job postings per analysis
const MaxJobLinks = 2

// NormalizeJobLinks cleans the submitted job links: blank entries are dropped,
// links without a scheme get https prepended, and the result is bounded to
// 1..MaxJobLinks entries.
func NormalizeJobLinks(links []string) ([]string, error) {
	cleaned := make([]string, 0, len(links))
	for _, link := range links {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			link = "https://" + link
		}
		if _, err := url.ParseRequestURI(link); err != nil {
			continue
		}
		cleaned = append(cleaned, link)
	}

	if len(cleaned) == 0 {
		return nil, errs.ErrNoJobLinks
	}
	if len(cleaned) > MaxJobLinks {
		return nil, errs.ErrTooManyJobLinks
	}
	return cleaned, nil
}
