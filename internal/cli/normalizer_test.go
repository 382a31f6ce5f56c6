package cli

import (
	"testing"

	"github.com/Zhengnan817/consumables-dashboard/internal/config"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
)

func TestNewNormalizerAppliesConfiguredAliases(t *testing.T) {
	cfg := &config.Config{
		HeaderAliases:       map[string]string{"Fecha": "date", "Cant": "Quantity", "Costo": "bogus"},
		DeptExtraAliases:    map[string]string{"Calidad": "QC", "Nowhere": "XX"},
		DeptExtraExclusions: []string{"Visitors"},
	}
	n := NewNormalizer(cfg)

	recs, stats, err := n.Batch(normalize.Batch{
		Source: "mx.csv",
		Header: []string{"Fecha", "Cant", "Dept"},
		Rows: [][]string{
			{"2025-01-02", "3", "calidad"},
			{"2025-01-03", "1", "Visitors"},
			{"2025-01-04", "2", "Nowhere"},
		},
	})
	if err != nil {
		t.Fatalf("batch with aliased headers should resolve: %v", err)
	}
	if len(recs) != 2 || stats.Kept != 2 {
		t.Fatalf("expected 2 records (one excluded), got %d %+v", len(recs), stats)
	}
	if recs[0].Department != "QC" {
		t.Errorf("configured alias not applied: %q", recs[0].Department)
	}
	if recs[1].Department != "Nowhere" {
		t.Errorf("alias to a non-canonical code must be ignored, got %q", recs[1].Department)
	}
}
