package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Transition("", "submitted")
	m.Transition("submitted", "under_review")
	m.Transition("submitted", "under_review")
	m.Eligibility(true)
	m.Eligibility(false)
	m.Eligibility(false)
	m.Repayment("completed")
	m.LockContention()

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("none", "submitted")); got != 1 {
		t.Fatalf("none->submitted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("submitted", "under_review")); got != 2 {
		t.Fatalf("submitted->under_review = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.eligibility.WithLabelValues("false")); got != 2 {
		t.Fatalf("ineligible = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.repayments.WithLabelValues("completed")); got != 1 {
		t.Fatalf("repayments = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lockBusy); got != 1 {
		t.Fatalf("lock contention = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Eligibility(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `pocketcredit_eligibility_decisions_total{eligible="true"} 1`) {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}
