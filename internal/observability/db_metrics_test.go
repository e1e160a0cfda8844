package observability

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDBFeedsVectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)

	if err := p.ObserveDB("users.list", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one histogram series for the ok status, no error series yet
	if got := testutil.CollectAndCount(p.DbQueryDuration); got != 1 {
		t.Fatalf("got %d duration series, want 1", got)
	}

	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 0 {
		t.Fatalf("got %d error series, want 0", got)
	}

	boom := errors.New("boom")

	if err := p.ObserveDB("users.create", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected the operation error back, got %v", err)
	}

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unknown")); got != 1 {
		t.Fatalf("got %v errors for users.create/unknown, want 1", got)
	}

	// the error path still records a latency sample
	if got := testutil.CollectAndCount(p.DbQueryDuration); got != 2 {
		t.Fatalf("got %d duration series, want 2", got)
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unique_violation",
			err:  &pgconn.PgError{Code: "23505"},
			want: "unique_violation",
		},
		{
			name: "query_canceled",
			err:  &pgconn.PgError{Code: "57014"},
			want: "query_canceled",
		},
		{
			name: "other_pg_code",
			err:  &pgconn.PgError{Code: "42P01"},
			want: "pg_42P01",
		},
		{
			name: "no_rows",
			err:  pgx.ErrNoRows,
			want: "no_rows",
		},
		{
			name: "deadline",
			err:  errors.New("context deadline exceeded"),
			want: "timeout",
		},
		{
			name: "connection",
			err:  errors.New("failed to connect to `host=db`"),
			want: "connection",
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: "unknown",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got class %q, want %q", got, tt.want)
			}
		})
	}
}
