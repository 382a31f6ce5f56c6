// Package memory keeps batches in process, for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

// Store is a Lister over named in-memory batches, listed in insertion order.
type Store struct {
	mu      sync.Mutex
	name    string
	order   []string
	items   map[string]*item
	fetches map[string]int
}

type item struct {
	batch   normalize.Batch
	err     error
	version int
}

var _ sources.Lister = (*Store)(nil)

func New(name string) *Store {
	return &Store{name: name, items: map[string]*item{}, fetches: map[string]int{}}
}

func (s *Store) Name() string { return s.name }

// Put stores or replaces a batch. Replacing bumps the version, so the key changes.
func (s *Store) Put(name string, header []string, rows ...[]string) {
	s.set(name, func(it *item) {
		it.batch = normalize.Batch{
			Source: name,
			Header: append([]string(nil), header...),
			Rows:   append([][]string(nil), rows...),
		}
		it.err = nil
	})
}

// Fail makes the named source return err on fetch.
func (s *Store) Fail(name string, err error) {
	s.set(name, func(it *item) { it.err = err })
}

func (s *Store) set(name string, apply func(*item)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[name]
	if !ok {
		it = &item{}
		s.items[name] = it
		s.order = append(s.order, name)
	}
	apply(it)
	it.version++
}

// Fetches reports how many times the named batch was fetched.
func (s *Store) Fetches(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[name]
}

func (s *Store) List(context.Context) ([]sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sources.Source, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.Source(n))
	}
	return out, nil
}

// Source returns the named batch as a standalone source.
func (s *Store) Source(name string) sources.Source {
	return &batchSource{store: s, name: name}
}

type batchSource struct {
	store *Store
	name  string
}

func (b *batchSource) Name() string { return b.name }

func (b *batchSource) Key() string {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	v := 0
	if it, ok := b.store.items[b.name]; ok {
		v = it.version
	}
	return fmt.Sprintf("memory:%s/%s@%d", b.store.name, b.name, v)
}

func (b *batchSource) Fetch(ctx context.Context) (normalize.Batch, error) {
	if err := ctx.Err(); err != nil {
		return normalize.Batch{}, err
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.fetches[b.name]++
	it, ok := b.store.items[b.name]
	if !ok {
		return normalize.Batch{}, fmt.Errorf("batch %q not found", b.name)
	}
	if it.err != nil {
		return normalize.Batch{}, it.err
	}
	out := it.batch
	out.Header = append([]string(nil), it.batch.Header...)
	out.Rows = append([][]string(nil), it.batch.Rows...)
	return out, nil
}
