package dao

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestQuerySessionChecked(t *testing.T) {

	fresh := &querySession{timeout: time.Minute, started: time.Now()}
	if err := fresh.checked(nil); err != nil {
		t.Errorf("expected no error inside the budget, got %v", err)
	}
	if err := fresh.checked(sql.ErrNoRows); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows to pass through, got %v", err)
	}

	elapsed := &querySession{timeout: time.Millisecond, started: time.Now().Add(-time.Second)}
	if err := elapsed.checked(nil); err != ErrQueryTimeout {
		t.Errorf("expected ErrQueryTimeout once the budget elapsed, got %v", err)
	}

	unbounded := &querySession{started: time.Now().Add(-time.Hour)}
	if err := unbounded.checked(nil); err != nil {
		t.Errorf("expected no budget without a timeout, got %v", err)
	}
}

func TestQuerySessionNormalizesDriverErrors(t *testing.T) {
	qs := &querySession{timeout: time.Minute, started: time.Now()}

	cases := []struct {
		err     error
		timeout bool
	}{
		{errors.New("Error 3024: Query execution was interrupted, maximum statement execution time exceeded"), true},
		{errors.New("pq: canceling statement due to statement timeout"), true},
		{errors.New("Error 1062: Duplicate entry"), false},
	}
	for _, c := range cases {
		got := qs.checked(c.err)
		if c.timeout && got != ErrQueryTimeout {
			t.Errorf("expected %v to normalize to ErrQueryTimeout, got %v", c.err, got)
		}
		if !c.timeout && got != c.err {
			t.Errorf("expected %v to pass through, got %v", c.err, got)
		}
	}
}
