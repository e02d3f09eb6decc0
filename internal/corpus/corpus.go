// Package corpus enumerates and reads the documents of a guide series.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Document is one readable document of a series. It is never mutated after loading.
type Document struct {
	// Path is slash-separated and relative to the series root.
	Path        string
	AbsPath     string
	Content     string
	Lines       []string
	Title       string
	Fingerprint string
}

// Dir returns the absolute directory containing the document.
func (d *Document) Dir() string {
	return filepath.Dir(d.AbsPath)
}

// ReadFailure records a document that could not be read; it is skipped by every check.
type ReadFailure struct {
	Path string
	Err  error
}

// Corpus is a snapshot of a series taken by Loader.Load.
type Corpus struct {
	Root      string
	Documents []*Document
	Failures  []ReadFailure
}

// ForEach runs fn for every document with at most workers goroutines.
// fn receives the document index so callers can reduce results in document order.
func (c *Corpus) ForEach(ctx context.Context, workers int, fn func(i int, doc *Document)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, doc := range c.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, doc)
			return nil
		})
	}
	return g.Wait()
}

// Digest identifies the corpus content: it changes when any document is added,
// removed or edited.
func (c *Corpus) Digest() string {
	entries := make([]string, 0, len(c.Documents))
	for _, d := range c.Documents {
		entries = append(entries, d.Path+"\x00"+d.Fingerprint)
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FailedPaths returns the relative paths of unreadable documents.
func (c *Corpus) FailedPaths() []string {
	out := make([]string, 0, len(c.Failures))
	for _, f := range c.Failures {
		out = append(out, f.Path)
	}
	return out
}
