package jobfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
)

const jobPage = `<html><head><style>body { color: red; }</style></head>
<body><script>console.log("tracking")</script>
<h1>Backend Engineer</h1>
<p>We are looking for Python and Docker experience.</p>
</body></html>`

func TestJobFetcher_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches pages and strips them to visible text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(jobPage))
		}))
		defer server.Close()

		jobs, err := NewJobFetcher(logger.NewNoopLogger()).FetchAll(ctx, []string{server.URL})

		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, server.URL, jobs[0].URL)
		assert.Contains(t, jobs[0].Text, "Backend Engineer")
		assert.Contains(t, jobs[0].Text, "Python and Docker")
		assert.NotContains(t, jobs[0].Text, "tracking")
		assert.NotContains(t, jobs[0].Text, "color: red")
	})

	t.Run("A failing link is skipped when another succeeds", func(t *testing.T) {
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(jobPage))
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer bad.Close()

		jobs, err := NewJobFetcher(logger.NewNoopLogger()).FetchAll(ctx, []string{bad.URL, good.URL})

		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, good.URL, jobs[0].URL)
	})

	t.Run("All links failing is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewJobFetcher(logger.NewNoopLogger()).FetchAll(ctx, []string{server.URL, server.URL + "/other"})

		assert.ErrorIs(t, err, errs.ErrJobFetchFailed)
	})

	t.Run("Page with no body text is treated as a failed fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body><script>only()</script></body></html>"))
		}))
		defer server.Close()

		_, err := NewJobFetcher(logger.NewNoopLogger()).FetchAll(ctx, []string{server.URL})

		assert.ErrorIs(t, err, errs.ErrJobFetchFailed)
	})
}
