package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/cache"
	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/memory"
)

var header = []string{"Date", "Item", "Quantity", "Extension", "Employee.1", "Department"}

type failingLister struct{}

func (failingLister) Name() string { return "broken" }

func (failingLister) List(context.Context) ([]sources.Source, error) {
	return nil, errors.New("api rate limited")
}

type recordingNotifier struct {
	mu      sync.Mutex
	summary []core.LoadSummary
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, s core.LoadSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summary = append(n.summary, s)
	return n.err
}

func fixture() (*memory.Store, *memory.Store) {
	hist := memory.New("history")
	hist.Put("2023-2025.xlsx", header,
		[]string{"1/15/2024", "GLV", "2", "$10.00", "E1", "BTC"},
		[]string{"1/16/2024", "TAPE", "1", "$5.00", "E2", "Pueblo,HSE"},
	)
	monthly := memory.New("monthly")
	monthly.Put("2025-01.csv", header,
		[]string{"2025-01-02", "GLV", "3", "", "E1", "WH"},
		[]string{"not a date", "GLV", "3", "1", "E1", "WH"},
	)
	monthly.Put("2025-02.csv", header,
		[]string{"2025-02-02", "MASK", "4", "$8", "E3", "QC AND NDT"},
	)
	return hist, monthly
}

func TestLoadMergesInSourceOrder(t *testing.T) {
	hist, monthly := fixture()
	n := &recordingNotifier{}
	l := New(hist.Source("2023-2025.xlsx"), []sources.Lister{monthly}, WithConcurrency(2), WithNotifier(n))

	res, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	recs := res.Table.Records()
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	wantItems := []string{"GLV", "GLV", "MASK"}
	wantDepts := []string{core.DeptBT, core.DeptSCM, core.DeptQC}
	for i := range recs {
		if recs[i].Item != wantItems[i] || recs[i].Department != wantDepts[i] {
			t.Fatalf("record %d = %s/%s, want %s/%s", i, recs[i].Item, recs[i].Department, wantItems[i], wantDepts[i])
		}
	}
	if recs[1].Extension.Valid {
		t.Fatal("empty extension must stay missing")
	}
	if res.Sources != 3 || res.Stats.Rows != 5 || res.Stats.Excluded != 1 || res.Stats.InvalidDate != 1 {
		t.Fatalf("unexpected stats: sources=%d %+v", res.Sources, res.Stats)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}

	if len(n.summary) != 1 {
		t.Fatalf("expected one summary, got %d", len(n.summary))
	}
	if s := n.summary[0]; s.RunID != res.RunID || s.Records != 3 || s.Sources != 3 || s.Failed != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestLoadSkipsFailedBatches(t *testing.T) {
	hist, monthly := fixture()
	monthly.Fail("2025-02.csv", errors.New("connection reset"))
	monthly.Put("2025-03.csv", []string{"Item", "Price"}, []string{"GLV", "1"})

	res, err := New(hist.Source("2023-2025.xlsx"), []sources.Lister{monthly, failingLister{}}).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", res.Warnings)
	}
	for _, w := range res.Warnings {
		if !IsUnavailable(w.Err) {
			t.Errorf("warning %v should wrap ErrSourceUnavailable", w)
		}
	}
	var sawSchema bool
	for _, w := range res.Warnings {
		if w.Source == "2025-03.csv" && errors.Is(w, core.ErrSchema) {
			sawSchema = true
		}
	}
	if !sawSchema {
		t.Fatalf("expected schema warning for 2025-03.csv: %v", res.Warnings)
	}
	if res.Table.Len() != 2 {
		t.Fatalf("expected 2 records from healthy batches, got %d", res.Table.Len())
	}
}

func TestLoadNoData(t *testing.T) {
	store := memory.New("monthly")
	store.Fail("a.csv", errors.New("boom"))
	n := &recordingNotifier{err: errors.New("broker down")}

	res, err := New(nil, []sources.Lister{store}, WithNotifier(n)).Load(context.Background())
	if !errors.Is(err, core.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if res == nil || len(res.Warnings) != 1 {
		t.Fatalf("expected partial result with one warning, got %+v", res)
	}
	if len(n.summary) != 1 || n.summary[0].Failed != 1 {
		t.Fatalf("summary should still be published: %+v", n.summary)
	}
}

func TestLoadMemoizesBySourceKey(t *testing.T) {
	hist, monthly := fixture()
	c := cache.NewLRUCache[normalize.Batch](16, time.Hour)
	newLoader := func() *Loader {
		return New(hist.Source("2023-2025.xlsx"), []sources.Lister{monthly}, WithCache(c))
	}

	for i := 0; i < 2; i++ {
		if _, err := newLoader().Load(context.Background()); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if got := monthly.Fetches("2025-01.csv"); got != 1 {
		t.Fatalf("expected one fetch through the cache, got %d", got)
	}

	monthly.Put("2025-01.csv", header, []string{"2025-01-09", "GLV", "1", "1", "E1", "WH"})
	res, err := newLoader().Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := monthly.Fetches("2025-01.csv"); got != 2 {
		t.Fatalf("changed batch should be refetched, got %d fetches", got)
	}
	if res.Table.Len() != 3 {
		t.Fatalf("expected 3 records after update, got %d", res.Table.Len())
	}
	if st := c.Stats(); st.Hits == 0 {
		t.Fatalf("expected cache hits, got %+v", st)
	}
}

func TestLoadCancelled(t *testing.T) {
	hist, monthly := fixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(hist.Source("2023-2025.xlsx"), []sources.Lister{monthly}).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
