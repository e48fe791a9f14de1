package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"trees": []}`)
	if err := s.Write("portfolio.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("portfolio.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempStore(t)
	if s.Exists("missing.json") {
		t.Error("missing file reported as existing")
	}
	_ = s.Write("present.json", []byte("{}"))
	if !s.Exists("present.json") {
		t.Error("written file reported as missing")
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("del.json", []byte("{}"))
	if err := s.Delete("del.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.json"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftoverTemp(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("doc.json", []byte("original"))

	if err := s.Write("doc.json", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("doc.json")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".treebank-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestReadWriteJSON(t *testing.T) {
	s := tempStore(t)
	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := WriteJSON(s, "d.json", doc{Name: "mango", Count: 3}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got doc
	if err := ReadJSON(s, "d.json", &got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Name != "mango" || got.Count != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	raw, _ := s.Read("d.json")
	if raw[len(raw)-1] != '\n' {
		t.Error("document should end with a newline")
	}
}

func TestReadJSONCorrupt(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("bad.json", []byte("{not json"))
	var v map[string]any
	if err := ReadJSON(s, "bad.json", &v); err == nil {
		t.Error("expected decode error for corrupt document")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/treebank-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "treebank-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
