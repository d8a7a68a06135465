package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutChecks(t *testing.T) {
	st := NewService(nil).Status(context.Background())
	if !st.OK || st.Checks != nil {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusReportsFailures(t *testing.T) {
	svc := NewService(map[string]Check{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	st := svc.Status(context.Background())
	if st.OK {
		t.Fatalf("expected not ok")
	}
	if st.Checks["postgres"] != "ok" || st.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks %+v", st.Checks)
	}
}
