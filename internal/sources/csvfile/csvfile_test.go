package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025-01.csv")
	writeFile(t, path, "Date,Item,Quantity,Extension\n2025-01-02,GLV,2,\"$1,234.56\"\n2025-01-03,TAPE,1\n")

	b, err := NewFile(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if b.Source != "2025-01.csv" || len(b.Header) != 4 || b.Len() != 2 {
		t.Fatalf("unexpected batch: %+v", b)
	}
	if b.Rows[0][3] != "$1,234.56" {
		t.Fatalf("quoted field not preserved: %q", b.Rows[0][3])
	}
	if len(b.Rows[1]) != 3 {
		t.Fatalf("ragged row should be kept as is: %v", b.Rows[1])
	}
}

func TestFileFetchMissing(t *testing.T) {
	if _, err := NewFile(filepath.Join(t.TempDir(), "nope.csv")).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileKeyChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	writeFile(t, path, "Date,Quantity\n")
	f := NewFile(path)
	before := f.Key()

	writeFile(t, path, "Date,Quantity\n2025-01-01,1\n")
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if f.Key() == before {
		t.Fatal("key should change when the file changes")
	}
	if !strings.HasPrefix(before, "file:") {
		t.Fatalf("unexpected key %q", before)
	}
}

func TestDirList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2025-02.csv"), "Date,Quantity\n")
	writeFile(t, filepath.Join(dir, "2025-01.CSV"), "Date,Quantity\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore")
	if err := os.Mkdir(filepath.Join(dir, "old.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := NewDir(dir).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name() != "2025-01.CSV" || got[1].Name() != "2025-02.csv" {
		names := make([]string, len(got))
		for i, s := range got {
			names[i] = s.Name()
		}
		t.Fatalf("unexpected listing %v", names)
	}

	if _, err := NewDir(filepath.Join(dir, "missing")).List(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
