package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestFSLoad(t *testing.T) {
	ctx := context.Background()
	l := NewFS(fstest.MapFS{
		"a.json":     {Data: []byte(`[1]`)},
		"b.json":     {Data: []byte(`[2]`)},
		"notes.txt":  {Data: []byte(`ignored`)},
		"sub/c.json": {Data: []byte(`[3]`)},
	})

	data, err := l.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load(a) error = %v", err)
	}
	if string(data) != "[1]" {
		t.Errorf("Load(a) = %q", data)
	}

	_, err = l.Load(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}

	names, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List() = %v, want [a b]", names)
	}
}

func TestFSLoad_RejectsTraversal(t *testing.T) {
	l := NewFS(fstest.MapFS{})
	for _, name := range []string{"../etc/passwd", "sub/c", ""} {
		if _, err := l.Load(context.Background(), name); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) error = %v, want invalid name error", name, err)
		}
	}
}

func TestFSLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewFS(fstest.MapFS{"a.json": {Data: []byte(`[]`)}})
	if _, err := l.Load(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestEmbeddedBundle(t *testing.T) {
	ctx := context.Background()
	l := NewEmbedded()
	if l.Driver() != DriverEmbedded {
		t.Errorf("Driver() = %s", l.Driver())
	}

	names, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := map[string]bool{
		"flat_and_stable_momentum_effect":      true,
		"flat_and_stable_counteraction_effect": true,
		"high_and_falling_momentum_effect":     true,
		"live_capture_historic_glucose":        true,
	}
	for _, n := range names {
		delete(want, n)
	}
	if len(want) != 0 {
		t.Errorf("embedded bundle missing %v", want)
	}

	if _, err := l.Load(ctx, "flat_and_stable_historic_glucose"); !errors.Is(err, ErrNotFound) {
		t.Errorf("canned scenarios must not ship historic glucose, got %v", err)
	}
}

func TestNewDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir() error = %v", err)
	}
	if l.Driver() != DriverDir {
		t.Errorf("Driver() = %s", l.Driver())
	}
	data, err := l.Load(context.Background(), "x")
	if err != nil || string(data) != "{}" {
		t.Errorf("Load(x) = %q, %v", data, err)
	}

	if _, err := NewDir(""); err == nil {
		t.Error("NewDir(\"\") should fail")
	}
	if _, err := NewDir(filepath.Join(dir, "x.json")); err == nil {
		t.Error("NewDir(file) should fail")
	}
	if _, err := NewDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("NewDir(missing) should fail")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	src := []byte(`[1]`)
	if err := m.Put(ctx, "a", src); err != nil {
		t.Fatal(err)
	}
	src[1] = '9'

	data, err := m.Load(ctx, "a")
	if err != nil || string(data) != "[1]" {
		t.Errorf("Load(a) = %q, %v; stored data must be copied", data, err)
	}
	if _, err := m.Load(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(b) error = %v", err)
	}
	if err := m.Put(ctx, "../x", nil); err == nil {
		t.Error("Put with traversal name should fail")
	}
	names, _ := m.List(ctx)
	if len(names) != 1 || names[0] != "a" {
		t.Errorf("List() = %v", names)
	}
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "fixtures.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("Path() = %s", s.Path())
	}
	if _, err := s.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load on empty db error = %v", err)
	}

	if err := s.Put(ctx, "a", []byte(`[1]`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, "a", []byte(`[2]`)); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	data, err := s.Load(ctx, "a")
	if err != nil || string(data) != "[2]" {
		t.Errorf("Load(a) = %q, %v", data, err)
	}

	names, err := s.List(ctx)
	if err != nil || len(names) != 1 {
		t.Errorf("List() = %v, %v", names, err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete error = %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete of missing resource error = %v", err)
	}
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "a", []byte(`[1]`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if data, err := reopened.Load(ctx, "a"); err != nil || string(data) != "[1]" {
		t.Errorf("Load after reopen = %q, %v", data, err)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	n, err := Import(ctx, m, fstest.MapFS{
		"a.json":     {Data: []byte(`[1]`)},
		"b.json":     {Data: []byte(`[2]`)},
		"readme.md":  {Data: []byte(`skip`)},
		"dir/c.json": {Data: []byte(`[3]`)},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Import() = %d, want 2", n)
	}
	if _, err := m.Load(ctx, "c"); !errors.Is(err, ErrNotFound) {
		t.Error("nested files must not be imported")
	}
}

func TestImport_EmbeddedIntoSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "fixtures.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	n, err := Import(ctx, s, Bundle())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	names, _ := NewEmbedded().List(ctx)
	if n != len(names) {
		t.Errorf("Import() = %d, want %d", n, len(names))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	l, closer, err := Open(ctx, Options{})
	if err != nil {
		t.Fatalf("Open(default) error = %v", err)
	}
	if l.Driver() != DriverEmbedded {
		t.Errorf("default driver = %s", l.Driver())
	}
	closer.Close()

	l, closer, err = Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "f.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if l.Driver() != DriverSQLite {
		t.Errorf("driver = %s", l.Driver())
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	l, _, err = Open(ctx, Options{Driver: DriverMemory})
	if err != nil || l.Driver() != DriverMemory {
		t.Errorf("Open(memory) = %v, %v", l, err)
	}

	if _, _, err := Open(ctx, Options{Driver: DriverDir}); err == nil {
		t.Error("Open(dir) without path should fail")
	}
	if _, _, err := Open(ctx, Options{Driver: DriverS3}); err == nil {
		t.Error("Open(s3) without bucket should fail")
	}
	if _, _, err := Open(ctx, Options{Driver: "ftp"}); err == nil {
		t.Error("Open(unknown) should fail")
	}
}
