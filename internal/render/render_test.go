package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spigell/pathfinder/internal/jobsearch"
)

func TestJobsMarksTopMatches(t *testing.T) {
	var out bytes.Buffer

	Jobs(&out, []jobsearch.JobMatch{
		{Title: "Backend Engineer", Employer: "Acme", ApplyURL: "https://acme.example/1", Score: 85, Rationale: "Go"},
		{Title: "QA Engineer", Employer: "Globex", ApplyURL: "https://globex.example/2", Score: 84, Rationale: "Testing"},
	})

	got := out.String()
	for _, want := range []string{"POSITION", "Backend Engineer", "Acme", "https://acme.example/1", "QA Engineer", "Testing"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}

	if strings.Count(got, topMatchLabel) != 1 {
		t.Fatalf("expected exactly one top match marker:\n%s", got)
	}
}

func TestHistory(t *testing.T) {
	var out bytes.Buffer
	History(&out, nil)
	if strings.TrimSpace(out.String()) != noHistory {
		t.Fatalf("unexpected empty history output: %q", out.String())
	}

	out.Reset()
	History(&out, []jobsearch.HistoryRecord{{ID: 7, Query: "Backend Engineer", JobCount: 2}})
	if !strings.Contains(out.String(), "#7 Backend Engineer (2)") {
		t.Fatalf("unexpected history output: %q", out.String())
	}
}

func TestHistoryLabel(t *testing.T) {
	got := HistoryLabel(jobsearch.HistoryRecord{ID: 3, Query: "SRE", JobCount: 1})
	if got != "#3 SRE (1 matches found)" {
		t.Fatalf("unexpected label: %q", got)
	}
}
