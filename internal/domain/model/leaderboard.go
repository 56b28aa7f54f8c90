package model

import "time"

// AdminLeaderboardRow is the staff-facing "unique problems solved" view.
// Score is a percentage of the contest's problems.
type AdminLeaderboardRow struct {
	Rank           int        `json:"rank"`
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	SolvedCount    int        `json:"solved_count"`
	SolvedProblems []string   `json:"solved_problems"`
	LastSolvedAt   *time.Time `json:"last_solved_at,omitempty"`
	TotalAttempts  int        `json:"total_attempts"`
	Score          int        `json:"score"` // round(solved / total problems * 100)
}

// StudentLeaderboardRow is the student-facing view. Score is the raw
// distinct-solved count, deliberately a different unit from the admin
// view's percentage.
type StudentLeaderboardRow struct {
	Rank       int        `json:"rank"`
	UserID     string     `json:"user_id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Score      int        `json:"score"`
	FinishTime *time.Time `json:"finish_time,omitempty"`
	Solutions  []Solution `json:"solutions"`
}

// Solution is one accepted submission surfaced on the student
// leaderboard. Code is nil unless the contest has ended.
type Solution struct {
	ProblemSlug string    `json:"problem_slug"`
	Language    string    `json:"language"`
	Code        *string   `json:"code"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CertificateRow is what the certificate mailer consumes for the top
// finishers; nothing else leaves the aggregator.
type CertificateRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Rank  int    `json:"rank"`
}
