// Package google reads a Google Sheets range as one batch.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

// Range is one A1 range of a spreadsheet, header row first.
type Range struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

var _ sources.Source = (*Range)(nil)

// New wraps an existing service.
func New(svc *gsheet.Service, spreadsheetID, rng string) *Range {
	return &Range{svc: svc, spreadsheetID: spreadsheetID, rng: rng}
}

// NewFromCredentials builds a read-only Sheets client from service account
// credentials, inline JSON taking precedence over the file.
func NewFromCredentials(ctx context.Context, spreadsheetID, rng, credentialsJSON, credentialsFile string, opts ...goption.ClientOption) (*Range, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, credentialsJSON, credentialsFile, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, rng), nil
}

func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string, opts ...goption.ClientOption) (*gsheet.Service, error) {
	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service", "credentials_size", len(creds), "scope", gsheet.SpreadsheetsReadonlyScope)
	opts = append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
	}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (r *Range) Name() string { return "sheets:" + r.rng }

// Key has no version marker: the Values API exposes none, so freshness
// comes from the cache TTL.
func (r *Range) Key() string { return "sheets:" + r.spreadsheetID + "!" + r.rng }

func (r *Range) Fetch(ctx context.Context) (normalize.Batch, error) {
	if r.svc == nil {
		return normalize.Batch{}, errors.New("sheets service not initialized")
	}
	// Unformatted values keep dates as serial numbers and amounts bare.
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("read %s: %w", r.rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = toStrings(row)
	}
	return sources.BatchFromRows(r.Name(), rows), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
