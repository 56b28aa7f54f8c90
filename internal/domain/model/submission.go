package model

import "time"

type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded Verdict = "TimeLimitExceeded"
	VerdictCompilationError  Verdict = "CompilationError"
	VerdictRuntimeError      Verdict = "RuntimeError"
	VerdictSystemError       Verdict = "SystemError"
)

// Submission is the durable record of one graded evaluation.
// Immutable after creation; the "Run" flow never produces one.
type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProblemSlug string    `json:"problem_slug"`
	ContestID   *string   `json:"contest_id,omitempty"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	Status      Verdict   `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CaseResult is the per-test-case detail returned by Run and Submit.
// For hidden cases Submit nulls out Input/ExpectedOutput/ActualOutput
// and sets IsHidden.
type CaseResult struct {
	Input          *string `json:"input"`
	ExpectedOutput *string `json:"expected_output"`
	ActualOutput   *string `json:"actual_output"`
	Passed         bool    `json:"passed"`
	Verdict        Verdict `json:"verdict"`
	IsHidden       bool    `json:"is_hidden"`
	Diagnostic     string  `json:"diagnostic,omitempty"`
}

// EvaluationResult is the shared response shape of Run and Submit.
type EvaluationResult struct {
	SubmissionID *string      `json:"submission_id,omitempty"`
	Status       Verdict      `json:"status"`
	PassedCount  int          `json:"passed_count"`
	TotalCount   int          `json:"total_count"`
	Results      []CaseResult `json:"results"`
}
