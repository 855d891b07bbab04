package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestNewFSCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "profiles")
	fs, err := NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	info, err := os.Stat(fs.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestWriteReadDelete(t *testing.T) {
	fs := testFS(t)

	if err := fs.Write("agent.json", []byte(`{"usage_id":"agent"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !fs.Exists("agent.json") {
		t.Fatal("Exists = false after Write")
	}

	data, err := fs.Read("agent.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != `{"usage_id":"agent"}` {
		t.Errorf("Read = %q", data)
	}

	if err := fs.Delete("agent.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fs.Exists("agent.json") {
		t.Error("Exists = true after Delete")
	}
}

func TestWriteOverwrites(t *testing.T) {
	fs := testFS(t)
	if err := fs.Write("a.json", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("a.json", []byte("two")); err != nil {
		t.Fatal(err)
	}
	data, _ := fs.Read("a.json")
	if string(data) != "two" {
		t.Errorf("Read = %q, want two", data)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	fs := testFS(t)
	if err := fs.Write("a.json", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(fs.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".ansuz-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWritePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	fs := testFS(t)
	if err := fs.Write("a.json", []byte("x")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(fs.Root(), "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	fs := testFS(t)
	for _, p := range []string{"", "../escape.json", "/etc/passwd", "a/../../b.json"} {
		if _, err := fs.Read(p); err == nil {
			t.Errorf("Read(%q) should fail", p)
		}
		if err := fs.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", p)
		}
		if fs.Exists(p) {
			t.Errorf("Exists(%q) = true", p)
		}
	}
}

func TestDeleteMissing(t *testing.T) {
	fs := testFS(t)
	if err := fs.Delete("absent.json"); err == nil {
		t.Error("Delete of a missing file should surface the error")
	}
}
