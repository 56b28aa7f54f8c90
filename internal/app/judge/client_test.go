package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"codearena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func newJudgeStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", 5*time.Second)
}

func respond(w http.ResponseWriter, statusID int, desc, stdout string) {
	out := b64(stdout)
	body := map[string]interface{}{
		"status": map[string]interface{}{"id": statusID, "description": desc},
		"stdout": out,
	}
	json.NewEncoder(w).Encode(body)
}

func TestEvaluateAccepted(t *testing.T) {
	var gotPath string
	var gotReq judgeRequest
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		respond(w, statusAccepted, "Accepted", "3\n")
	})

	tc := model.TestCase{Input: "1 2", ExpectedOutput: "3"}
	oc := client.Evaluate(context.Background(), "print(sum(map(int, input().split())))", 71, tc)

	assert.True(t, oc.Passed)
	assert.Equal(t, model.VerdictAccepted, oc.Verdict)
	assert.Equal(t, "3", oc.Stdout, "trailing newline is trimmed for display")

	assert.Equal(t, "/submissions?base64_encoded=true&wait=true", gotPath)
	assert.Equal(t, 71, gotReq.LanguageID)
	assert.Equal(t, b64("1 2"), gotReq.Stdin)
	assert.Equal(t, b64("3"), gotReq.ExpectedOutput)
}

func TestEvaluateWrongAnswer(t *testing.T) {
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, statusWrongAnswer, "Wrong Answer", "4")
	})

	oc := client.Evaluate(context.Background(), "print(4)", 71, model.TestCase{ExpectedOutput: "3"})
	assert.False(t, oc.Passed)
	assert.Equal(t, model.VerdictWrongAnswer, oc.Verdict)
	assert.Equal(t, "4", oc.Stdout)
}

func TestEvaluateCompilationError(t *testing.T) {
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":         map[string]interface{}{"id": statusCompilationError, "description": "Compilation Error"},
			"compile_output": b64("main.cpp:1: expected ';'"),
		}
		json.NewEncoder(w).Encode(body)
	})

	oc := client.Evaluate(context.Background(), "int main( {}", 54, model.TestCase{})
	assert.Equal(t, model.VerdictCompilationError, oc.Verdict)
	assert.Contains(t, oc.Diagnostic, "expected ';'")
}

func TestEvaluateStillInQueueMapsToTimeLimit(t *testing.T) {
	// A non-terminal status after the synchronous wait is reported as
	// a time limit, by product policy.
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, statusInQueue, "In Queue", "")
	})

	oc := client.Evaluate(context.Background(), "while True: pass", 71, model.TestCase{})
	assert.False(t, oc.Passed)
	assert.Equal(t, model.VerdictTimeLimitExceeded, oc.Verdict)
	assert.Contains(t, oc.Diagnostic, "in queue")
}

func TestEvaluateUnknownStatusDefaultsToRuntimeError(t *testing.T) {
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, 11, "Runtime Error (SIGSEGV)", "")
	})

	oc := client.Evaluate(context.Background(), "x", 71, model.TestCase{})
	assert.Equal(t, model.VerdictRuntimeError, oc.Verdict)
}

func TestEvaluateNon2xxBecomesSystemError(t *testing.T) {
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	oc := client.Evaluate(context.Background(), "x", 71, model.TestCase{})
	assert.False(t, oc.Passed)
	assert.Equal(t, model.VerdictSystemError, oc.Verdict)
	assert.Contains(t, oc.Diagnostic, "429")
}

func TestEvaluateNetworkFailureBecomesSystemError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.URL, "", time.Second)
	srv.Close() // connection refused from here on

	oc := client.Evaluate(context.Background(), "x", 71, model.TestCase{})
	assert.False(t, oc.Passed)
	assert.Equal(t, model.VerdictSystemError, oc.Verdict)
	assert.NotEmpty(t, oc.Diagnostic)
}

func TestEvaluateMissingStatusBecomesSystemError(t *testing.T) {
	client := newJudgeStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stdout": null}`))
	})

	oc := client.Evaluate(context.Background(), "x", 71, model.TestCase{})
	assert.Equal(t, model.VerdictSystemError, oc.Verdict)
}

func TestEvaluateSendsAPIKey(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Auth-Token")
		respond(w, statusAccepted, "Accepted", "")
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "sekrit", time.Second)
	client.Evaluate(context.Background(), "x", 71, model.TestCase{})
	assert.Equal(t, "sekrit", gotToken)
}

func TestMergeDriver(t *testing.T) {
	assert.Equal(t, "print(1)", MergeDriver("", "print(1)"))
	assert.Equal(t, "print(1)", MergeDriver("no placeholder here", "print(1)"),
		"template without placeholder yields user code verbatim")
	assert.Equal(t, "before\nprint(1)\nafter",
		MergeDriver("before\n{{USER_CODE}}\nafter", "print(1)"))
}

func TestLanguageID(t *testing.T) {
	assert.Equal(t, 71, LanguageID("python"))
	assert.Equal(t, 63, LanguageID("javascript"))
	assert.Equal(t, 54, LanguageID("cpp"))
	assert.Equal(t, 62, LanguageID("java"))
	assert.Equal(t, 50, LanguageID("c"))
	assert.Equal(t, 71, LanguageID("brainfuck"), "unknown languages fall back to python")
	assert.False(t, KnownLanguage("brainfuck"))
}

// scriptedEvaluator returns a canned outcome per test case input.
type scriptedEvaluator struct {
	outcomes map[string]CaseOutcome
	calls    atomic.Int32
}

func (f *scriptedEvaluator) Evaluate(ctx context.Context, source string, languageID int, tc model.TestCase) CaseOutcome {
	f.calls.Add(1)
	if oc, ok := f.outcomes[tc.Input]; ok {
		return oc
	}
	return CaseOutcome{Passed: true, Verdict: model.VerdictAccepted}
}

func TestEvaluateAllPreservesCaseOrder(t *testing.T) {
	ev := &scriptedEvaluator{outcomes: map[string]CaseOutcome{
		"b": {Verdict: model.VerdictWrongAnswer},
	}}
	cases := []model.TestCase{{Input: "a"}, {Input: "b"}, {Input: "c"}}

	outcomes := EvaluateAll(context.Background(), ev, "src", 71, cases, 2)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Passed)
	assert.Equal(t, model.VerdictWrongAnswer, outcomes[1].Verdict)
	assert.True(t, outcomes[2].Passed)
	assert.Equal(t, int32(3), ev.calls.Load())
}

func TestEvaluateAllIsolatesFailures(t *testing.T) {
	// One SystemError case must not stop the siblings from being judged.
	ev := &scriptedEvaluator{outcomes: map[string]CaseOutcome{
		"bad": {Verdict: model.VerdictSystemError, Diagnostic: "judge request failed"},
	}}
	cases := []model.TestCase{{Input: "ok1"}, {Input: "bad"}, {Input: "ok2"}}

	outcomes := EvaluateAll(context.Background(), ev, "src", 71, cases, 0)
	assert.True(t, outcomes[0].Passed)
	assert.Equal(t, model.VerdictSystemError, outcomes[1].Verdict)
	assert.True(t, outcomes[2].Passed)
}
