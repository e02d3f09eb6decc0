package corpus

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inful/mdfp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/frontmatter"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/markdown"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures a Loader.
type Options struct {
	Extension   string
	Workers     int
	FileTimeout time.Duration
}

// Loader enumerates and reads series documents.
type Loader struct {
	ext     string
	workers int
	timeout time.Duration
}

// NewLoader creates a loader; zero options fall back to ".md", one worker and no timeout.
func NewLoader(opts Options) *Loader {
	if opts.Extension == "" {
		opts.Extension = ".md"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Loader{ext: opts.Extension, workers: opts.Workers, timeout: opts.FileTimeout}
}

// Extension returns the document extension this loader matches.
func (l *Loader) Extension() string { return l.ext }

// Workers returns the fan-out limit.
func (l *Loader) Workers() int { return l.workers }

// Enumerate lists every document under root, recursively and in lexical order.
// Subdirectories that cannot be walked are returned as failures.
func (l *Loader) Enumerate(root string) ([]string, []ReadFailure, error) {
	if err := checkRoot(root); err != nil {
		return nil, nil, err
	}

	var paths []string
	var failures []ReadFailure
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			failures = append(failures, ReadFailure{Path: relSlash(root, path), Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), l.ext) {
			return nil
		}
		paths = append(paths, relSlash(root, path))
		return nil
	})
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk series").
			Fatal().
			WithContext("path", root).
			Build()
	}
	return paths, failures, nil
}

// Load reads every document under root. Unreadable documents are logged and
// recorded in Corpus.Failures; only a missing root or a cancelled context fails the load.
func (l *Loader) Load(ctx context.Context, root string) (*Corpus, error) {
	paths, failures, err := l.Enumerate(root)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i], errs[i] = l.ReadDocument(gctx, root, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &Corpus{Root: root, Failures: failures}
	for i, rel := range paths {
		if errs[i] != nil {
			slog.Warn("Skipping unreadable document", logfields.Document(rel), logfields.Error(errs[i]))
			c.Failures = append(c.Failures, ReadFailure{Path: rel, Err: errs[i]})
			continue
		}
		c.Documents = append(c.Documents, docs[i])
	}
	return c, nil
}

// ReadDocument reads a single document given its path relative to root.
func (l *Loader) ReadDocument(ctx context.Context, root, rel string) (*Document, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))

	data, err := l.readFile(ctx, abs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			Warning().
			WithContext("path", rel).
			Build()
	}
	if !utf8.Valid(data) {
		return nil, errors.FileSystemError("document is not valid UTF-8").
			Warning().
			WithContext("path", rel).
			Build()
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	content := norm.NFC.String(string(data))

	doc := &Document{
		Path:    rel,
		AbsPath: abs,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}

	fm, body, had, err := frontmatter.Split([]byte(content))
	if err != nil {
		// An unterminated `---` block is treated as body text.
		fm, body, had = nil, []byte(content), false
	}
	if had {
		if fields, err := frontmatter.ParseYAML(fm); err == nil {
			doc.Title = frontmatter.Title(fields)
		}
	}
	if doc.Title == "" {
		doc.Title = markdown.Title(body)
	}
	doc.Fingerprint = mdfp.CalculateFingerprintFromParts(string(fm), string(body))
	return doc, nil
}

func (l *Loader) readFile(ctx context.Context, path string) ([]byte, error) {
	if l.timeout <= 0 {
		// #nosec G304 -- path comes from the series walk.
		return os.ReadFile(path)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		// #nosec G304 -- path comes from the series walk.
		data, err := os.ReadFile(path)
		ch <- result{data: data, err: err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundError("series path does not exist").WithContext("path", root).Build()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stat series path").
			Fatal().
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return errors.ValidationError("series path is not a directory").WithContext("path", root).Build()
	}
	return nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
