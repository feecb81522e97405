package analysis

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/port/persistence"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
)

// Workflow stages, used in error reporting and logs
const (
	StagePrecheck   = "PRECHECK"
	StageExtracting = "EXTRACTING"
	StageFetching   = "FETCHING"
	StageInvoking   = "INVOKING_LLM"
	StageValidating = "VALIDATING"
	StageDebit      = "DEBIT"
)

// Request carries one analysis invocation for an authenticated user
type Request struct {
	UserID   uint64
	Upload   svcport.ResumeUpload
	JobLinks []string
}

// Result is a successful analysis plus the post-debit credit count
type Result struct {
	Report    *entity.AnalysisReport
	Remaining int
}

// Orchestrator sequences the credit-gated analysis workflow. A credit is
// consumed if and only if a validated report is returned: the debit is an
// atomic conditional decrement executed after validation, and the report is
// withheld when the decrement finds no credit left.
type Orchestrator struct {
	creditRepo persistence.CreditRepository
	extractor  svcport.DocumentExtractor
	fetcher    svcport.JobFetcher
	analyzer   svcport.ResumeAnalyzer
	rules      *RuleTable
	logger     coreport.Logger
}

// NewOrchestrator creates the analysis workflow orchestrator
func NewOrchestrator(
	creditRepo persistence.CreditRepository,
	extractor svcport.DocumentExtractor,
	fetcher svcport.JobFetcher,
	analyzer svcport.ResumeAnalyzer,
	rules *RuleTable,
	logger coreport.Logger,
) *Orchestrator {
	if rules == nil {
		rules = DefaultRuleTable()
	}
	return &Orchestrator{
		creditRepo: creditRepo,
		extractor:  extractor,
		fetcher:    fetcher,
		analyzer:   analyzer,
		rules:      rules,
		logger:     logger,
	}
}

// Analyze runs the full workflow for one request
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*Result, error) {
	links, err := NormalizeJobLinks(req.JobLinks)
	if err != nil {
		return nil, err
	}

	// Cheap pre-check so users without credit never pay the extraction and
	// completion cost. The authoritative check is the conditional debit below.
	ledger, err := o.creditRepo.GetLedger(ctx, req.UserID)
	if err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StagePrecheck, err)
	}
	if !ledger.HasCredit() {
		o.logger.Warn("Analysis rejected: no credits", map[string]any{
			"user_id": req.UserID,
		})
		return nil, &errs.CreditError{UserID: req.UserID, Remaining: ledger.Remaining, Err: errs.ErrInsufficientCredits}
	}

	resume, err := o.extractor.Extract(ctx, req.Upload)
	if err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StageExtracting, err)
	}

	jobs, err := o.fetcher.FetchAll(ctx, links)
	if err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StageFetching, err)
	}

	report, err := o.analyzer.Analyze(ctx, resume, jobs)
	if err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StageInvoking, err)
	}

	o.rules.CleanReport(report)
	if err := report.Validate(); err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StageValidating, err)
	}

	remaining, debited, err := o.creditRepo.DebitOne(ctx, req.UserID)
	if err != nil {
		return nil, errs.NewAnalysisError(req.UserID, StageDebit, err)
	}
	if !debited {
		// A concurrent request consumed the last credit after our pre-check.
		// The report is withheld so result and debit stay paired.
		o.logger.Warn("Analysis completed but credits exhausted concurrently", map[string]any{
			"user_id": req.UserID,
		})
		return nil, &errs.CreditError{UserID: req.UserID, Remaining: remaining, Err: errs.ErrInsufficientCredits}
	}

	o.logger.Info("Analysis completed", map[string]any{
		"user_id":   req.UserID,
		"jobs":      len(jobs),
		"keywords":  len(report.ExtractedKeywords.AllKeywords),
		"remaining": remaining,
	})

	return &Result{Report: report, Remaining: remaining}, nil
}

// Rules exposes the active normalization rule table
func (o *Orchestrator) Rules() *RuleTable {
	return o.rules
}
