package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/dash/contents/data/monthly", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref") != "main" {
			t.Errorf("unexpected ref %q", r.URL.Query().Get("ref"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing token header")
		}
		json.NewEncoder(w).Encode([]entry{
			{Name: "2025-01.csv", Path: "data/monthly/2025-01.csv", SHA: "aaa", Type: "file", DownloadURL: srv.URL + "/raw/2025-01.csv"},
			{Name: "README.md", Path: "data/monthly/README.md", SHA: "bbb", Type: "file", DownloadURL: srv.URL + "/raw/README.md"},
			{Name: "archive.csv", Path: "data/monthly/archive.csv", SHA: "ccc", Type: "dir"},
			{Name: "2025-02.CSV", Path: "data/monthly/2025-02.CSV", SHA: "ddd", Type: "file", DownloadURL: srv.URL + "/raw/missing.csv"},
		})
	})
	mux.HandleFunc("/raw/2025-01.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Item,Quantity,Department\n1/5/2025,GLV,2,WH\n"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestListerListAndFetch(t *testing.T) {
	srv := newServer(t)
	l := New(srv.Client(), "acme/dash", "/data/monthly/", "main", WithBaseURL(srv.URL), WithToken("secret"))

	files, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0].Name() != "2025-01.csv" || files[1].Name() != "2025-02.CSV" {
		t.Fatalf("unexpected listing: %d files", len(files))
	}
	if files[0].Key() != "github:data/monthly/2025-01.csv@aaa" {
		t.Fatalf("unexpected key %q", files[0].Key())
	}

	b, err := files[0].Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if b.Source != "2025-01.csv" || b.Len() != 1 || b.Rows[0][3] != "WH" {
		t.Fatalf("unexpected batch: %+v", b)
	}

	if _, err := files[1].Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing download")
	}
}

func TestListerAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := New(srv.Client(), "acme/dash", "data", "", WithBaseURL(srv.URL)).List(context.Background()); err == nil {
		t.Fatal("expected error on 403")
	}
}
