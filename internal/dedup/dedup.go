// Package dedup decides which fetched postings are new relative to the master store.
//
// A posting's URL is its primary key. Postings without a URL fall back to the
// (title, company, location) triple, compared after trimming whitespace.
package dedup

import (
	"strings"

	"github.com/jonathan/jobfunnel/internal/types"
)

// Index is the set of keys already present in the master store.
type Index struct {
	urls    map[string]struct{}
	triples map[[3]string]struct{}
}

// NewIndex builds an index over historical records.
func NewIndex(history []types.MasterRecord) *Index {
	idx := &Index{
		urls:    make(map[string]struct{}, len(history)),
		triples: make(map[[3]string]struct{}, len(history)),
	}
	for _, r := range history {
		idx.Add(r)
	}
	return idx
}

// Add records a key pair in the index.
func (idx *Index) Add(r types.MasterRecord) {
	if url := strings.TrimSpace(r.URL); url != "" {
		idx.urls[url] = struct{}{}
	}
	idx.triples[tripleKey(r)] = struct{}{}
}

// HasURL reports whether the record's URL is already known. Empty URLs never match.
func (idx *Index) HasURL(r types.MasterRecord) bool {
	url := strings.TrimSpace(r.URL)
	if url == "" {
		return false
	}
	_, ok := idx.urls[url]
	return ok
}

// HasTriple reports whether the record's (title, company, location) is already known.
func (idx *Index) HasTriple(r types.MasterRecord) bool {
	_, ok := idx.triples[tripleKey(r)]
	return ok
}

// Contains applies the URL-first rule: URL-bearing records match on URL only,
// URL-less records match on the triple.
func (idx *Index) Contains(r types.MasterRecord) bool {
	if strings.TrimSpace(r.URL) != "" {
		return idx.HasURL(r)
	}
	return idx.HasTriple(r)
}

func tripleKey(r types.MasterRecord) [3]string {
	key := r.FallbackKey()
	for i := range key {
		key[i] = strings.TrimSpace(key[i])
	}
	return key
}

// Filter returns the records of batch that are not in history. When no history
// exists yet every record is new.
func Filter(batch []types.DailyRecord, history []types.MasterRecord, historyExists bool) []types.DailyRecord {
	if !historyExists {
		return append([]types.DailyRecord(nil), batch...)
	}

	idx := NewIndex(history)
	fresh := make([]types.DailyRecord, 0, len(batch))
	for _, r := range batch {
		if idx.Contains(r.MasterRecord) {
			continue
		}
		fresh = append(fresh, r)
	}
	return fresh
}

// Merge returns the subset of additions to append to the master store so that
// no key appears twice across history and the appended records.
func Merge(history, additions []types.MasterRecord) []types.MasterRecord {
	idx := NewIndex(history)
	out := make([]types.MasterRecord, 0, len(additions))
	for _, r := range additions {
		if idx.Contains(r) {
			continue
		}
		idx.Add(r)
		out = append(out, r)
	}
	return out
}
