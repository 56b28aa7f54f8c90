package service

import (
	"context"
	"log/slog"
	"time"

	"codearena/internal/app/judge"
	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/google/uuid"
)

// EvaluationService owns the Run (fast feedback, ephemeral) and Submit
// (graded, persisted) flows.
type EvaluationService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	evaluator      judge.Evaluator
	maxConcurrency int
}

func NewEvaluationService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	evaluator judge.Evaluator,
	maxConcurrency int,
) *EvaluationService {
	return &EvaluationService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		evaluator:      evaluator,
		maxConcurrency: maxConcurrency,
	}
}

type RunRequest struct {
	ProblemSlug string `json:"problem_slug"`
	Code        string `json:"code"`
	Language    string `json:"language"`
}

type SubmitRequest struct {
	ProblemSlug string  `json:"problem_slug"`
	Code        string  `json:"code"`
	Language    string  `json:"language"`
	ContestID   *string `json:"contest_id,omitempty"`
}

// Run evaluates code against the problem's public test cases only and
// returns full per-case detail. It never writes a Submission.
func (s *EvaluationService) Run(ctx context.Context, userID string, req RunRequest) (*model.EvaluationResult, error) {
	if req.ProblemSlug == "" || req.Code == "" || req.Language == "" {
		return nil, common.Errorf("problem_slug, code and language are required: %w", common.ErrValidation)
	}

	problem, err := s.problemRepo.FindProblemBySlug(ctx, req.ProblemSlug)
	if err != nil {
		return nil, common.Errorf("problem %q: %w", req.ProblemSlug, err)
	}
	if len(problem.TestCases) == 0 {
		return nil, common.Errorf("problem %q: %w", req.ProblemSlug, common.ErrNoTestCases)
	}

	cases := problem.PublicTestCases()
	if len(cases) == 0 {
		// No case is marked public: fall back to the first declared
		// case so the author's worked example is still runnable.
		cases = problem.TestCases[:1]
	}

	outcomes := s.evaluate(ctx, problem, req.Code, req.Language, cases)
	red := judge.Reduce(outcomes)

	results := make([]model.CaseResult, len(cases))
	for i, tc := range cases {
		results[i] = caseDetail(tc, outcomes[i])
	}

	return &model.EvaluationResult{
		Status:      red.Overall,
		PassedCount: red.PassedCount,
		TotalCount:  len(cases),
		Results:     results,
	}, nil
}

// Submit evaluates code against every test case, hidden ones included,
// persists exactly one Submission with the reduced status, and redacts
// hidden-case detail from the response. The write happens regardless
// of pass or fail; a failed write is surfaced to the caller because
// the result would otherwise silently not count.
func (s *EvaluationService) Submit(ctx context.Context, userID string, req SubmitRequest) (*model.EvaluationResult, error) {
	if req.ProblemSlug == "" || req.Code == "" || req.Language == "" {
		return nil, common.Errorf("problem_slug, code and language are required: %w", common.ErrValidation)
	}

	problem, err := s.problemRepo.FindProblemBySlug(ctx, req.ProblemSlug)
	if err != nil {
		return nil, common.Errorf("problem %q: %w", req.ProblemSlug, err)
	}
	if len(problem.TestCases) == 0 {
		return nil, common.Errorf("problem %q: %w", req.ProblemSlug, common.ErrNoTestCases)
	}

	cases := problem.TestCases
	outcomes := s.evaluate(ctx, problem, req.Code, req.Language, cases)
	red := judge.Reduce(outcomes)

	submission := &model.Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProblemSlug: problem.Slug,
		ContestID:   req.ContestID,
		Code:        req.Code,
		Language:    req.Language,
		Status:      red.Overall,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.submissionRepo.CreateSubmission(ctx, submission); err != nil {
		return nil, common.Errorf("evaluation finished but submission could not be recorded: %w", err)
	}
	slog.Info("submission recorded",
		"submission_id", submission.ID,
		"problem_slug", submission.ProblemSlug,
		"status", submission.Status,
		"passed", red.PassedCount,
		"total", len(cases))

	results := make([]model.CaseResult, len(cases))
	for i, tc := range cases {
		if tc.IsPublic {
			results[i] = caseDetail(tc, outcomes[i])
			continue
		}
		// Hidden cases expose pass/fail only, even to the submitting
		// student, even after grading.
		results[i] = model.CaseResult{
			Passed:   outcomes[i].Passed,
			Verdict:  outcomes[i].Verdict,
			IsHidden: true,
		}
	}

	return &model.EvaluationResult{
		SubmissionID: &submission.ID,
		Status:       red.Overall,
		PassedCount:  red.PassedCount,
		TotalCount:   len(cases),
		Results:      results,
	}, nil
}

// History returns the caller's own submissions for a problem, newest
// first. A user always sees their own code here.
func (s *EvaluationService) History(ctx context.Context, userID, problemSlug string) ([]model.Submission, error) {
	if problemSlug == "" {
		return nil, common.Errorf("problem slug is required: %w", common.ErrValidation)
	}
	subs, err := s.submissionRepo.ListForUserProblem(ctx, userID, problemSlug)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *EvaluationService) evaluate(ctx context.Context, problem *model.Problem, code, language string, cases []model.TestCase) []judge.CaseOutcome {
	source := judge.MergeDriver(problem.DriverCode[language], code)
	return judge.EvaluateAll(ctx, s.evaluator, source, judge.LanguageID(language), cases, s.maxConcurrency)
}

func caseDetail(tc model.TestCase, oc judge.CaseOutcome) model.CaseResult {
	input, expected, actual := tc.Input, tc.ExpectedOutput, oc.Stdout
	return model.CaseResult{
		Input:          &input,
		ExpectedOutput: &expected,
		ActualOutput:   &actual,
		Passed:         oc.Passed,
		Verdict:        oc.Verdict,
		Diagnostic:     oc.Diagnostic,
	}
}
