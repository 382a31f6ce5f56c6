// Package xlsx reads the historical workbook, from disk or over HTTP.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

// Workbook is one sheet of an .xlsx file. Location is a local path or an
// http(s) URL.
type Workbook struct {
	location string
	sheet    string
	client   *http.Client
}

var _ sources.Source = (*Workbook)(nil)

// New reads sheet from location; an empty sheet means the first one.
func New(location, sheet string, client *http.Client) *Workbook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Workbook{location: location, sheet: sheet, client: client}
}

func (w *Workbook) remote() bool {
	return strings.HasPrefix(w.location, "http://") || strings.HasPrefix(w.location, "https://")
}

func (w *Workbook) Name() string {
	if w.remote() {
		return path.Base(w.location)
	}
	return filepath.Base(w.location)
}

// Key for local files carries modification time and size. Remote workbooks
// are keyed by URL and rely on the cache TTL.
func (w *Workbook) Key() string {
	k := "xlsx:" + w.location + "#" + w.sheet
	if w.remote() {
		return k
	}
	if info, err := os.Stat(w.location); err == nil {
		k += fmt.Sprintf("@%d-%d", info.ModTime().UnixNano(), info.Size())
	}
	return k
}

func (w *Workbook) Fetch(ctx context.Context) (normalize.Batch, error) {
	r, err := w.open(ctx)
	if err != nil {
		return normalize.Batch{}, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("open workbook %s: %w", w.Name(), err)
	}
	defer f.Close()

	sheet := w.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	// Raw values keep dates as serial numbers and amounts unformatted.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("read sheet %q of %s: %w", sheet, w.Name(), err)
	}
	return sources.BatchFromRows(w.Name(), rows), nil
}

func (w *Workbook) open(ctx context.Context) (io.Reader, error) {
	if !w.remote() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fh, err := os.Open(w.location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", w.location, err)
		}
		return fh, nil
	}
	body, err := sources.Download(ctx, w.client, w.location, nil)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(body), nil
}
