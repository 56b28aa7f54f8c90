// Package judge talks to a Judge0-compatible execution service and
// turns its heterogeneous responses into uniform per-case verdicts.
package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codearena/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

// DriverPlaceholder is replaced by the user's code inside a problem's
// driver template. A template without it means the user code is the
// whole program.
const DriverPlaceholder = "{{USER_CODE}}"

// Judge0 terminal status ids.
const (
	statusInQueue          = 1
	statusProcessing       = 2
	statusAccepted         = 3
	statusWrongAnswer      = 4
	statusTimeLimit        = 5
	statusCompilationError = 6
)

// CaseOutcome is the normalized result of evaluating one test case.
// Evaluate never fails; transport problems degrade into a SystemError
// outcome so one network blip costs a single case, not the evaluation.
type CaseOutcome struct {
	Passed     bool
	Verdict    model.Verdict
	Stdout     string
	Diagnostic string
}

// Evaluator is the trust boundary to the execution judge. Swapping the
// judge vendor means swapping this implementation only.
type Evaluator interface {
	Evaluate(ctx context.Context, source string, languageID int, tc model.TestCase) CaseOutcome
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type judgeRequest struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type judgeResponse struct {
	Status *struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
}

// Evaluate runs one (source, language, test case) tuple against the
// judge synchronously. The payload is base64 on the wire in both
// directions; the judge itself decides pass/fail from expected_output.
func (c *Client) Evaluate(ctx context.Context, source string, languageID int, tc model.TestCase) CaseOutcome {
	reqBody := judgeRequest{
		SourceCode:     base64.StdEncoding.EncodeToString([]byte(source)),
		LanguageID:     languageID,
		Stdin:          base64.StdEncoding.EncodeToString([]byte(tc.Input)),
		ExpectedOutput: base64.StdEncoding.EncodeToString([]byte(tc.ExpectedOutput)),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return systemError(fmt.Sprintf("failed to encode judge request: %v", err))
	}

	url := c.baseURL + "/submissions?base64_encoded=true&wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return systemError(fmt.Sprintf("failed to build judge request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Auth-Token", c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return systemError(fmt.Sprintf("judge request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return systemError(fmt.Sprintf("judge returned HTTP %d", resp.StatusCode))
	}

	var jr judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return systemError(fmt.Sprintf("failed to decode judge response: %v", err))
	}

	return outcomeFromResponse(jr)
}

func outcomeFromResponse(jr judgeResponse) CaseOutcome {
	stdout := trimTrailing(decodeB64(jr.Stdout))

	if jr.Status == nil {
		return systemError("judge response carried no status")
	}

	switch jr.Status.ID {
	case statusAccepted:
		return CaseOutcome{Passed: true, Verdict: model.VerdictAccepted, Stdout: stdout}
	case statusInQueue, statusProcessing:
		// The judge did not reach a terminal state within its
		// synchronous wait window. Product policy is to report this
		// as a time limit, not as an infrastructure failure.
		return CaseOutcome{
			Verdict:    model.VerdictTimeLimitExceeded,
			Stdout:     stdout,
			Diagnostic: "judge timed out while the case was still in queue",
		}
	case statusWrongAnswer:
		return CaseOutcome{Verdict: model.VerdictWrongAnswer, Stdout: stdout, Diagnostic: diagnosticOf(jr)}
	case statusTimeLimit:
		return CaseOutcome{Verdict: model.VerdictTimeLimitExceeded, Stdout: stdout, Diagnostic: diagnosticOf(jr)}
	case statusCompilationError:
		return CaseOutcome{Verdict: model.VerdictCompilationError, Stdout: stdout, Diagnostic: diagnosticOf(jr)}
	default:
		return CaseOutcome{Verdict: model.VerdictRuntimeError, Stdout: stdout, Diagnostic: diagnosticOf(jr)}
	}
}

func diagnosticOf(jr judgeResponse) string {
	if d := decodeB64(jr.CompileOutput); d != "" {
		return d
	}
	if d := decodeB64(jr.Stderr); d != "" {
		return d
	}
	if d := decodeB64(jr.Message); d != "" {
		return d
	}
	if jr.Status != nil {
		return jr.Status.Description
	}
	return ""
}

func systemError(diagnostic string) CaseOutcome {
	return CaseOutcome{Verdict: model.VerdictSystemError, Diagnostic: diagnostic}
}

func decodeB64(s *string) string {
	if s == nil {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*s))
	if err != nil {
		// Some deployments return plain text for these fields.
		return *s
	}
	return string(decoded)
}

// trimTrailing strips trailing whitespace for display. The verdict is
// the judge's comparison, never a re-comparison of this string.
func trimTrailing(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}

// MergeDriver substitutes the user's code into a driver template. An
// empty template, or one without the placeholder, yields the user code
// verbatim.
func MergeDriver(template, userCode string) string {
	if template == "" || !strings.Contains(template, DriverPlaceholder) {
		return userCode
	}
	return strings.ReplaceAll(template, DriverPlaceholder, userCode)
}

// EvaluateAll fans out one judge call per test case and fans the
// outcomes back in, in declared case order. maxConcurrency bounds the
// number of in-flight calls; <= 0 means unbounded. A failing case
// never poisons its siblings.
func EvaluateAll(ctx context.Context, ev Evaluator, source string, languageID int, cases []model.TestCase, maxConcurrency int) []CaseOutcome {
	outcomes := make([]CaseOutcome, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for i, tc := range cases {
		i, tc := i, tc
		g.Go(func() error {
			outcomes[i] = ev.Evaluate(ctx, source, languageID, tc)
			return nil
		})
	}
	g.Wait() // goroutines never return errors; outcomes carry failures

	return outcomes
}
