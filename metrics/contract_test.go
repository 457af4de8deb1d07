package metrics

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatusClassAndOutcome(t *testing.T) {
	tests := []struct {
		status     int
		wantClass  string
		wantResult string
	}{
		{status: 200, wantClass: "2xx", wantResult: OutcomeSuccess},
		{status: 201, wantClass: "2xx", wantResult: OutcomeSuccess},
		{status: 204, wantClass: "2xx", wantResult: OutcomeSuccess},
		{status: 400, wantClass: "4xx", wantResult: OutcomeError},
		{status: 404, wantClass: "4xx", wantResult: OutcomeError},
		{status: 500, wantClass: "5xx", wantResult: OutcomeError},
		{status: 99, wantClass: "unknown", wantResult: OutcomeError},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			if got := HTTPStatusClass(tc.status); got != tc.wantClass {
				t.Fatalf("HTTPStatusClass() = %q, want %q", got, tc.wantClass)
			}
			if got := HTTPOutcome(tc.status); got != tc.wantResult {
				t.Fatalf("HTTPOutcome() = %q, want %q", got, tc.wantResult)
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	if got := Outcome(nil); got != OutcomeSuccess {
		t.Fatalf("Outcome(nil) = %q, want %q", got, OutcomeSuccess)
	}
	if got := Outcome(errors.New("boom")); got != OutcomeError {
		t.Fatalf("Outcome(err) = %q, want %q", got, OutcomeError)
	}
}
