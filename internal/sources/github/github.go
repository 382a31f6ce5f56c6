// Package github lists and downloads monthly extracts stored in a GitHub
// repository folder through the contents API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources/csvfile"
)

const defaultBaseURL = "https://api.github.com"

// entry is one item of a contents API directory listing.
type entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Lister enumerates the .csv files of repo/path at ref.
type Lister struct {
	client  *http.Client
	baseURL string
	repo    string
	path    string
	ref     string
	token   string
}

var _ sources.Lister = (*Lister)(nil)

type Option func(*Lister)

// WithBaseURL points the lister at another API host.
func WithBaseURL(u string) Option {
	return func(l *Lister) { l.baseURL = strings.TrimRight(u, "/") }
}

// WithToken authenticates requests, lifting the anonymous rate limit.
func WithToken(token string) Option {
	return func(l *Lister) { l.token = token }
}

func New(client *http.Client, repo, path, ref string, opts ...Option) *Lister {
	if client == nil {
		client = http.DefaultClient
	}
	l := &Lister{
		client:  client,
		baseURL: defaultBaseURL,
		repo:    repo,
		path:    strings.Trim(path, "/"),
		ref:     ref,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lister) Name() string { return "github:" + l.repo + "/" + l.path }

func (l *Lister) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	if l.token != "" {
		h.Set("Authorization", "Bearer "+l.token)
	}
	return h
}

// List returns the files in API order, keeping type "file" entries whose
// name ends in .csv.
func (l *Lister) List(ctx context.Context) ([]sources.Source, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s", l.baseURL, l.repo, l.path)
	if l.ref != "" {
		u += "?ref=" + url.QueryEscape(l.ref)
	}
	body, err := sources.Download(ctx, l.client, u, l.headers())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", l.Name(), err)
	}

	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode listing of %s: %w", l.Name(), err)
	}

	var out []sources.Source
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(strings.ToLower(e.Name), csvfile.Ext) {
			continue
		}
		out = append(out, &File{entry: e, client: l.client, header: l.headers()})
	}
	return out, nil
}

// File is one remote extract.
type File struct {
	entry  entry
	client *http.Client
	header http.Header
}

var _ sources.Source = (*File)(nil)

func (f *File) Name() string { return f.entry.Name }

// Key is the blob sha: identical content shares a cache entry.
func (f *File) Key() string { return "github:" + f.entry.Path + "@" + f.entry.SHA }

func (f *File) Fetch(ctx context.Context) (normalize.Batch, error) {
	if f.entry.DownloadURL == "" {
		return normalize.Batch{}, fmt.Errorf("%s has no download url", f.entry.Name)
	}
	body, err := sources.Download(ctx, f.client, f.entry.DownloadURL, f.header)
	if err != nil {
		return normalize.Batch{}, err
	}
	rows, err := csvfile.ReadRows(bytes.NewReader(body))
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("parse %s: %w", f.entry.Name, err)
	}
	return sources.BatchFromRows(f.entry.Name, rows), nil
}
