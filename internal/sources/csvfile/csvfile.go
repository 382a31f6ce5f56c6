// Package csvfile reads monthly delimited-text extracts from local disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

// Ext is the extension of incremental batches.
const Ext = ".csv"

// File is one extract; one file is one batch.
type File struct {
	path string
}

var _ sources.Source = (*File)(nil)

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Name() string { return filepath.Base(f.path) }

// Key includes size and modification time so an edited file misses the cache.
func (f *File) Key() string {
	info, err := os.Stat(f.path)
	if err != nil {
		return "file:" + f.path
	}
	return fmt.Sprintf("file:%s@%d-%d", f.path, info.ModTime().UnixNano(), info.Size())
}

func (f *File) Fetch(ctx context.Context) (normalize.Batch, error) {
	if err := ctx.Err(); err != nil {
		return normalize.Batch{}, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	rows, err := ReadRows(fh)
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("parse %s: %w", f.Name(), err)
	}
	return sources.BatchFromRows(f.Name(), rows), nil
}

// ReadRows parses delimited text leniently: ragged rows and stray quotes are
// accepted, since extracts come from spreadsheet exports.
func ReadRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// Dir lists the extracts of a folder, sorted by file name.
type Dir struct {
	dir string
}

var _ sources.Lister = (*Dir)(nil)

func NewDir(dir string) *Dir { return &Dir{dir: dir} }

func (d *Dir) Name() string { return d.dir }

func (d *Dir) List(ctx context.Context) ([]sources.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]sources.Source, 0, len(names))
	for _, n := range names {
		out = append(out, NewFile(filepath.Join(d.dir, n)))
	}
	return out, nil
}
