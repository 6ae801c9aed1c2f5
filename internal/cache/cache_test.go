package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTarget(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	// Test enabled cache
	c, err := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if !c.enabled {
		t.Error("cache should be enabled")
	}

	// Test disabled cache
	c, err = New("", "", false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.enabled {
		t.Error("cache should be disabled")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "nested", "cache", "dir")

	if _, err := New(cacheDir, "1.0.0", true); err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	if a != b {
		t.Error("HashBytes() should be deterministic")
	}
	if a == HashBytes([]byte("world")) {
		t.Error("HashBytes() should differ for different inputs")
	}
	if len(a) != 64 {
		t.Errorf("HashBytes() hex length = %d, want 64", len(a))
	}
}

func TestHashFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTarget(t, tmpDir, "f.py", "x = 1\n")

	hash, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if hash != HashBytes([]byte("x = 1\n")) {
		t.Error("HashFile() should hash file contents")
	}

	if _, err := HashFile(filepath.Join(tmpDir, "missing.py")); err == nil {
		t.Error("HashFile() should return error for missing file")
	}
}

func TestSetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	target := writeTarget(t, tmpDir, "target.py", "def fn(): pass\n")
	data := []byte(`{"fn":{"gets":[]}}`)

	if err := c.Set(target, nil, data); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok := c.Get(target)
	if !ok {
		t.Fatal("Get() should hit after Set()")
	}
	if string(got) != string(data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestGetMiss(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	target := writeTarget(t, tmpDir, "target.py", "pass\n")
	if _, ok := c.Get(target); ok {
		t.Error("Get() should miss for unseen target")
	}
}

func TestGetInvalidatedByTargetChange(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	target := writeTarget(t, tmpDir, "target.py", "x = 1\n")
	if err := c.Set(target, nil, []byte("data")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	writeTarget(t, tmpDir, "target.py", "x = 2\n")

	if _, ok := c.Get(target); ok {
		t.Error("Get() should miss after target changes")
	}
}

func TestGetInvalidatedByImportChange(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	target := writeTarget(t, tmpDir, "target.py", "import util\n")
	imported := writeTarget(t, tmpDir, "util.py", "def helper(): pass\n")

	hash, err := HashFile(imported)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	imports := map[string]string{imported: hash}

	if err := c.Set(target, imports, []byte("data")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok := c.Get(target); !ok {
		t.Fatal("Get() should hit while imports are unchanged")
	}

	writeTarget(t, tmpDir, "util.py", "def helper(): return 1\n")

	if _, ok := c.Get(target); ok {
		t.Error("Get() should miss after an imported file changes")
	}
}

func TestGetInvalidatedByVersionChange(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	target := writeTarget(t, tmpDir, "target.py", "pass\n")

	c1, _ := New(cacheDir, "1.0.0", true)
	if err := c1.Set(target, nil, []byte("data")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	c2, _ := New(cacheDir, "2.0.0", true)
	if _, ok := c2.Get(target); ok {
		t.Error("Get() should miss across versions")
	}
}

func TestDisabledCache(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New("", "", false)

	target := writeTarget(t, tmpDir, "target.py", "pass\n")

	if err := c.Set(target, nil, []byte("data")); err != nil {
		t.Errorf("Set() on disabled cache should be a no-op, got %v", err)
	}
	if _, ok := c.Get(target); ok {
		t.Error("Get() on disabled cache should always miss")
	}
	if err := c.Invalidate(target); err != nil {
		t.Errorf("Invalidate() on disabled cache should be a no-op, got %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on disabled cache should be a no-op, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	target := writeTarget(t, tmpDir, "target.py", "pass\n")
	if err := c.Set(target, nil, []byte("data")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	if err := c.Invalidate(target); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok := c.Get(target); ok {
		t.Error("Get() should miss after Invalidate()")
	}

	// Invalidating an absent entry is not an error
	if err := c.Invalidate(target); err != nil {
		t.Errorf("Invalidate() on missing entry should succeed, got %v", err)
	}
}

func TestClear(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	a := writeTarget(t, tmpDir, "a.py", "pass\n")
	b := writeTarget(t, tmpDir, "b.py", "pass\n")
	c.Set(a, nil, []byte("a"))
	c.Set(b, nil, []byte("b"))

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok := c.Get(a); ok {
		t.Error("Get() should miss after Clear()")
	}
	if _, ok := c.Get(b); ok {
		t.Error("Get() should miss after Clear()")
	}
}

func TestEntryPathDistinguishesTargets(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	d1 := filepath.Join(tmpDir, "one")
	d2 := filepath.Join(tmpDir, "two")
	os.MkdirAll(d1, 0755)
	os.MkdirAll(d2, 0755)
	a := writeTarget(t, d1, "mod.py", "x = 1\n")
	b := writeTarget(t, d2, "mod.py", "x = 2\n")

	if c.entryPath(a) == c.entryPath(b) {
		t.Error("entryPath() should differ for same basename in different dirs")
	}
}

func TestGetStats(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := New(filepath.Join(tmpDir, "cache"), "1.0.0", true)

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0 for empty cache", stats.Entries)
	}

	target := writeTarget(t, tmpDir, "target.py", "pass\n")
	if err := c.Set(target, nil, []byte("data")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
	if stats.TotalSize == 0 {
		t.Error("TotalSize should be non-zero after Set()")
	}
}

func TestGetStatsDisabled(t *testing.T) {
	c, _ := New("", "", false)
	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0 for disabled cache", stats.Entries)
	}
}
