package performance

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"
)

// simulate runs one timed request against a reporter, with jittered
// duration and a row count standing in for the work performed.
func simulate(reporters *JobReporters, id ReporterID, rows int64, done chan int) {
	startedAt := reporters.BeginTime(id)
	time.Sleep(time.Duration(1+rand.Intn(5)) * time.Millisecond)
	reporters.EndTime(id, startedAt, SizeJob(rows))
	done <- 1
}

func TestOverlappingRequestsAreReconciled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping statistics simulation test.")
	}
	PanicOnProblem = true
	reporters := NewJobReporters(32)
	defer reporters.Stop()

	total := 50
	done := make(chan int)
	for i := 0; i < total; i++ {
		id := ListContactsCounter
		if i%2 == 0 {
			id = SearchContactsCounter
		}
		go simulate(reporters, id, int64(100+rand.Intn(900)), done)
	}
	for remaining := total; remaining > 0; remaining-- {
		<-done
	}

	report := reporters.Report(ListContactsCounter)
	if report.Name != "listcontacts" {
		t.Errorf("expected reporter name listcontacts, got %s", report.Name)
	}
	if report.Size == 0 {
		t.Error("expected nonzero row count after simulated requests")
	}
	if report.Duration == 0 {
		t.Error("expected nonzero duration after simulated requests")
	}
}

func TestBeginEndTimeOrdering(t *testing.T) {
	PanicOnProblem = true
	reporters := NewJobReporters(8)
	defer reporters.Stop()

	began := reporters.BeginTime(GetContactCounter)
	reporters.EndTime(GetContactCounter, began, SizeJob(1))

	report := reporters.Report(GetContactCounter)
	if report.Name != "getcontact" {
		t.Errorf("expected reporter name getcontact, got %s", report.Name)
	}
}

func TestDumpRendersQueue(t *testing.T) {
	PanicOnProblem = true
	reporters := NewJobReporters(8)
	defer reporters.Stop()

	began := reporters.BeginTime(ContactStatsCounter)
	reporters.EndTime(ContactStatsCounter, began, SizeJob(1))
	// Let the reporting goroutine absorb the end event.
	reporters.Report(ContactStatsCounter)

	var buf bytes.Buffer
	reporters.Reporters[ContactStatsCounter].Q.Dump(&buf, false)
	if !strings.Contains(buf.String(), "contactstats") {
		t.Errorf("dump should mention the reporter name, got: %s", buf.String())
	}
}
