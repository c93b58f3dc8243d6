package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/nvandessel/glucosim/internal/fixture"
	"github.com/nvandessel/glucosim/internal/mockstore"
	"github.com/nvandessel/glucosim/internal/models"
	"github.com/nvandessel/glucosim/internal/resource"
)

// Runner builds stores for Cases against an isolated SQLite fixture database.
type Runner struct {
	t     *testing.T
	dir   string
	cases int
}

// NewRunner creates a runner with a sandboxed HOME.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return &Runner{t: t, dir: tmpDir}
}

// Run seeds a fresh fixture database for c, builds the store and queries it.
func (r *Runner) Run(c Case) Result {
	r.t.Helper()
	ctx := context.Background()

	db := r.seed(ctx, c)
	r.t.Cleanup(func() { db.Close() })

	var opts []mockstore.Option
	opts = append(opts, mockstore.WithLoader(db))
	if !c.CurrentDate.IsZero() {
		opts = append(opts, mockstore.WithCurrentDate(c.CurrentDate))
	}
	st := mockstore.New(ctx, c.Scenario, opts...)

	result := Result{Name: c.Name, Store: st, Backing: st.Backing()}

	result.LatestPanic = capture(func() {
		result.Latest = st.LatestGlucose()
	})
	result.MomentumPanic = capture(func() {
		result.Momentum, result.MomentumErr = st.GetRecentMomentumEffect(ctx)
	})
	result.CounteractionPanic = capture(func() {
		result.Counteraction, result.CounteractionErr = st.GetCounteractionEffects(ctx, c.Window.Start, c.Window.End, result.Momentum)
	})
	return result
}

// seed creates a per-case SQLite database holding the embedded bundle plus
// the case's history and fixture overrides.
func (r *Runner) seed(ctx context.Context, c Case) *resource.SQLite {
	r.t.Helper()

	r.cases++
	db, err := resource.NewSQLite(filepath.Join(r.dir, fmt.Sprintf("case-%d.db", r.cases)))
	if err != nil {
		r.t.Fatalf("seed: open fixture db: %v", err)
	}

	if _, err := resource.Import(ctx, db, resource.Bundle()); err != nil {
		db.Close()
		r.t.Fatalf("seed: import bundle: %v", err)
	}

	for _, omit := range c.Omit {
		if err := db.Delete(ctx, omit); err != nil {
			db.Close()
			r.t.Fatalf("seed: delete %s: %v", omit, err)
		}
	}

	if len(c.History) > 0 {
		end := c.HistoryEnd
		if end.IsZero() {
			end = DefaultHistoryEnd
		}
		samples := make([]models.GlucoseSample, len(c.History))
		for i, spec := range c.History {
			samples[i] = spec.ToSample(end)
		}
		data, err := fixture.EncodeHistoricGlucose(samples)
		if err != nil {
			db.Close()
			r.t.Fatalf("seed: encode history: %v", err)
		}
		if err := db.Put(ctx, c.Scenario.HistoricGlucoseResource(), data); err != nil {
			db.Close()
			r.t.Fatalf("seed: put history: %v", err)
		}
	}

	for res, data := range c.Fixtures {
		if err := db.Put(ctx, res, data); err != nil {
			db.Close()
			r.t.Fatalf("seed: put %s: %v", res, err)
		}
	}
	return db
}

// capture runs fn and returns the error it panicked with, if any.
func capture(fn func()) (panicErr error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				panicErr = err
				return
			}
			panicErr = errors.New(fmt.Sprint(r))
		}
	}()
	fn()
	return nil
}
