package resource

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
)

func TestNewPostgres_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != postgresDriver {
			t.Errorf("driver = %q, want %q", driver, postgresDriver)
		}
		if dsn != defaultPostgresDSN {
			t.Errorf("dsn = %q, want default", dsn)
		}
		return nil, errors.New("boom")
	}
	t.Cleanup(func() { sqlOpen = orig })

	if _, err := NewPostgres(context.Background(), ""); err == nil {
		t.Fatal("expected open error")
	}
}

// TestPostgres runs against a live database when GLUCOSIM_TEST_POSTGRES_DSN is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("GLUCOSIM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GLUCOSIM_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	p, err := NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	defer p.Close()

	if err := p.Put(ctx, "glucosim_test_resource", []byte(`[1]`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	t.Cleanup(func() {
		p.db.ExecContext(ctx, `DELETE FROM glucosim_resources WHERE name = $1`, "glucosim_test_resource")
	})

	data, err := p.Load(ctx, "glucosim_test_resource")
	if err != nil || string(data) != "[1]" {
		t.Errorf("Load() = %q, %v", data, err)
	}
	if _, err := p.Load(ctx, "glucosim_missing_resource"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}
