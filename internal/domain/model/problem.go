package model

import (
	"time"
)

// Problem identity is its slug: submissions join on slug, not on the
// primary id, so the slug is immutable once created.
type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	TestCases   []TestCase        `json:"test_cases,omitempty"`
	DriverCode  map[string]string `json:"driver_code,omitempty"` // language -> template with {{USER_CODE}}
	CreatedByID *string           `json:"created_by_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type TestCase struct {
	ID             string `json:"id"`
	ProblemID      string `json:"problem_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsPublic       bool   `json:"is_public"`
	SortOrder      int    `json:"sort_order"`
}

// PublicTestCases returns the cases a student may see, in declared order.
func (p *Problem) PublicTestCases() []TestCase {
	var public []TestCase
	for _, tc := range p.TestCases {
		if tc.IsPublic {
			public = append(public, tc)
		}
	}
	return public
}
