package analysis

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
	persistencemocks "github.com/cvmatch/cvmatch-backend/mocks/port/persistence"
	servicemocks "github.com/cvmatch/cvmatch-backend/mocks/port/service"
)

type orchestratorMocks struct {
	creditRepo *persistencemocks.MockCreditRepository
	extractor  *servicemocks.MockDocumentExtractor
	fetcher    *servicemocks.MockJobFetcher
	analyzer   *servicemocks.MockResumeAnalyzer
}

func newOrchestratorWithMocks() (*Orchestrator, *orchestratorMocks) {
	m := &orchestratorMocks{
		creditRepo: new(persistencemocks.MockCreditRepository),
		extractor:  new(servicemocks.MockDocumentExtractor),
		fetcher:    new(servicemocks.MockJobFetcher),
		analyzer:   new(servicemocks.MockResumeAnalyzer),
	}
	orch := NewOrchestrator(m.creditRepo, m.extractor, m.fetcher, m.analyzer, nil, logger.NewNoopLogger())
	return orch, m
}

func ledgerWith(userID uint64, remaining int) *entity.CreditLedger {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return &entity.CreditLedger{UserID: userID, Remaining: remaining, CreatedAt: now, UpdatedAt: now}
}

func analyzeRequest() Request {
	return Request{
		UserID:   7,
		Upload:   svcport.ResumeUpload{Filename: "resume.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		JobLinks: []string{"example.com/job"},
	}
}

func completeReport() *entity.AnalysisReport {
	return &entity.AnalysisReport{
		ExtractedKeywords: entity.ExtractedKeywords{AllKeywords: []string{"python", "docker"}},
		Keywords:          entity.KeywordMatch{Present: []string{"python"}, Missing: []string{"docker"}},
		Recommendations:   []string{"Add docker to the skills section"},
		Conclusion:        "Strong candidate",
	}
}

func TestOrchestrator_Analyze(t *testing.T) {
	ctx := context.Background()
	resume := &entity.ResumeDocument{Filename: "resume.pdf", Text: "python developer"}
	jobs := []entity.JobDescription{{URL: "https://example.com/job", Text: "we need python and docker"}}

	t.Run("Successful analysis debits exactly one credit", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 3), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(resume, nil)
		m.fetcher.On("FetchAll", ctx, []string{"https://example.com/job"}).Return(jobs, nil)
		m.analyzer.On("Analyze", ctx, resume, jobs).Return(completeReport(), nil)
		m.creditRepo.On("DebitOne", ctx, uint64(7)).Return(2, true, nil)

		result, err := orch.Analyze(ctx, analyzeRequest())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Remaining)
		assert.NotEmpty(t, result.Report.ExtractedKeywords.AllKeywords)
		m.creditRepo.AssertExpectations(t)
	})

	t.Run("Zero credits rejects before any extraction or completion call", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 0), nil)

		result, err := orch.Analyze(ctx, analyzeRequest())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, errs.ErrInsufficientCredits)
		assert.Equal(t, http.StatusPaymentRequired, errs.HTTPStatus(err))
		m.extractor.AssertNotCalled(t, "Extract")
		m.analyzer.AssertNotCalled(t, "Analyze")
		m.creditRepo.AssertNotCalled(t, "DebitOne")
	})

	t.Run("Link validation runs before the ledger is touched", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		req := analyzeRequest()
		req.JobLinks = []string{"a.com/1", "a.com/2", "a.com/3"}

		_, err := orch.Analyze(ctx, req)

		assert.ErrorIs(t, err, errs.ErrTooManyJobLinks)
		m.creditRepo.AssertNotCalled(t, "GetLedger")
	})

	t.Run("Extraction failure leaves the ledger untouched", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 3), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(nil, errs.ErrFileTooLarge)

		_, err := orch.Analyze(ctx, analyzeRequest())

		assert.ErrorIs(t, err, errs.ErrFileTooLarge)
		m.creditRepo.AssertNotCalled(t, "DebitOne")
	})

	t.Run("Report missing the conclusion fails without a debit", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		incomplete := completeReport()
		incomplete.Conclusion = ""

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 3), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(resume, nil)
		m.fetcher.On("FetchAll", ctx, mock.Anything).Return(jobs, nil)
		m.analyzer.On("Analyze", ctx, resume, jobs).Return(incomplete, nil)

		result, err := orch.Analyze(ctx, analyzeRequest())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, errs.ErrLLMResponse)
		m.creditRepo.AssertNotCalled(t, "DebitOne")
	})

	t.Run("Report with no keywords fails without a debit", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		empty := completeReport()
		empty.ExtractedKeywords.AllKeywords = nil

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 3), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(resume, nil)
		m.fetcher.On("FetchAll", ctx, mock.Anything).Return(jobs, nil)
		m.analyzer.On("Analyze", ctx, resume, jobs).Return(empty, nil)

		_, err := orch.Analyze(ctx, analyzeRequest())

		assert.ErrorIs(t, err, errs.ErrLLMResponse)
		m.creditRepo.AssertNotCalled(t, "DebitOne")
	})

	t.Run("Concurrent exhaustion withholds the report", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 1), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(resume, nil)
		m.fetcher.On("FetchAll", ctx, mock.Anything).Return(jobs, nil)
		m.analyzer.On("Analyze", ctx, resume, jobs).Return(completeReport(), nil)
		// Another request of the same user won the race for the last credit
		m.creditRepo.On("DebitOne", ctx, uint64(7)).Return(0, false, nil)

		result, err := orch.Analyze(ctx, analyzeRequest())

		assert.Nil(t, result)
		assert.ErrorIs(t, err, errs.ErrInsufficientCredits)
	})

	t.Run("Fetcher failure maps to upstream error", func(t *testing.T) {
		orch, m := newOrchestratorWithMocks()

		m.creditRepo.On("GetLedger", ctx, uint64(7)).Return(ledgerWith(7, 2), nil)
		m.extractor.On("Extract", ctx, mock.Anything).Return(resume, nil)
		m.fetcher.On("FetchAll", ctx, mock.Anything).Return(nil, errs.ErrJobFetchFailed)

		_, err := orch.Analyze(ctx, analyzeRequest())

		assert.ErrorIs(t, err, errs.ErrJobFetchFailed)
		var stageErr *errs.AnalysisError
		require.True(t, errors.As(err, &stageErr))
		assert.Equal(t, StageFetching, stageErr.Stage)
		m.creditRepo.AssertNotCalled(t, "DebitOne")
	})
}
