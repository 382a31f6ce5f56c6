package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBatchFromRowsSkipsLeadingBlankRows(t *testing.T) {
	b := BatchFromRows("hist", [][]string{
		{"", " "},
		{"Date", "Quantity"},
		{"2025-01-01", "2"},
	})
	if b.Source != "hist" || len(b.Header) != 2 || b.Header[0] != "Date" || b.Len() != 1 {
		t.Fatalf("unexpected batch: %+v", b)
	}

	empty := BatchFromRows("empty", nil)
	if empty.Header != nil || empty.Len() != 0 {
		t.Fatalf("expected empty batch, got %+v", empty)
	}
}

func TestStaticLister(t *testing.T) {
	s := NewStatic("extras")
	if s.Name() != "extras" {
		t.Fatalf("unexpected name %q", s.Name())
	}
	items, err := s.List(context.Background())
	if err != nil || len(items) != 0 {
		t.Fatalf("expected no items, got %v %v", items, err)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("Date,Quantity\n"))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("Authorization", "Bearer tok")
	body, err := Download(context.Background(), srv.Client(), srv.URL+"/ok.csv", h)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.HasPrefix(string(body), "Date,Quantity") {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := Download(context.Background(), srv.Client(), srv.URL+"/missing", h); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestDownloadRejectsOversizeBody(t *testing.T) {
	old := maxDownload
	maxDownload = 16
	t.Cleanup(func() { maxDownload = old })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/exact.csv" {
			w.Write([]byte(strings.Repeat("x", 16)))
			return
		}
		w.Write([]byte("Date,Quantity\n2025-01-01,1\n"))
	}))
	defer srv.Close()

	if _, err := Download(context.Background(), srv.Client(), srv.URL+"/big.csv", nil); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	body, err := Download(context.Background(), srv.Client(), srv.URL+"/exact.csv", nil)
	if err != nil || len(body) != 16 {
		t.Fatalf("body at the limit should pass, got %d bytes, %v", len(body), err)
	}
}
