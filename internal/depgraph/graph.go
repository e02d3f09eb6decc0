// Package depgraph builds the document dependency graph of a series and
// analyzes it for circular and missing dependencies.
package depgraph

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"slices"

	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/markdown"
	"git.home.luguber.info/inful/continuity/internal/util/sets"
)

// schemePattern matches URL-style targets such as https://host/page.md.
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// Graph maps each document path to the set of document paths it links to.
// Paths are slash-separated and relative to the series root. Targets are
// recorded whether or not they exist and may escape the root (`../x.md`).
type Graph struct {
	edges  map[string]sets.Set[string]
	titles map[string]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string]sets.Set[string]), titles: make(map[string]string)}
}

// AddNode records a document, with an optional display title.
func (g *Graph) AddNode(node, title string) {
	if _, ok := g.edges[node]; !ok {
		g.edges[node] = sets.New[string]()
	}
	if title != "" {
		g.titles[node] = title
	}
}

// AddEdge records that from links to to.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from, "")
	g.edges[from].Add(to)
}

// Nodes returns the source documents in lexical order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.edges))
	for n := range g.edges {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Targets returns the documents node links to, in lexical order.
func (g *Graph) Targets(node string) []string {
	return sets.Sorted(g.edges[node])
}

// HasNode reports whether node is a source document of the graph.
func (g *Graph) HasNode(node string) bool {
	_, ok := g.edges[node]
	return ok
}

// Title returns the display title of node, or node itself when unknown.
func (g *Graph) Title(node string) string {
	if t, ok := g.titles[node]; ok {
		return t
	}
	return node
}

// EdgeCount returns the number of recorded edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.edges {
		n += targets.Len()
	}
	return n
}

// Builder extracts internal document references into a Graph.
type Builder struct {
	loader  *corpus.Loader
	scanner *markdown.DocumentLinkScanner
}

// NewBuilder creates a builder for documents enumerated by loader.
func NewBuilder(loader *corpus.Loader) *Builder {
	return &Builder{
		loader:  loader,
		scanner: markdown.NewDocumentLinkScanner(loader.Extension()),
	}
}

// Build loads the series under root and builds its graph.
func (b *Builder) Build(ctx context.Context, root string) (*Graph, error) {
	cor, err := b.loader.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	return b.BuildCorpus(ctx, cor)
}

// BuildCorpus builds the graph of an already loaded corpus. Every readable
// document becomes a node, including documents with no outgoing links.
func (b *Builder) BuildCorpus(ctx context.Context, cor *corpus.Corpus) (*Graph, error) {
	perDoc := make([][]string, len(cor.Documents))
	err := cor.ForEach(ctx, b.loader.Workers(), func(i int, doc *corpus.Document) {
		perDoc[i] = b.Dependencies(cor.Root, doc)
	})
	if err != nil {
		return nil, err
	}

	g := NewGraph()
	for i, doc := range cor.Documents {
		g.AddNode(doc.Path, doc.Title)
		for _, target := range perDoc[i] {
			g.AddEdge(doc.Path, target)
		}
	}
	slog.Debug("Dependency graph built",
		logfields.Documents(len(cor.Documents)),
		slog.Int("edges", g.EdgeCount()))
	return g, nil
}

// Dependencies returns the root-relative targets of doc's internal links.
func (b *Builder) Dependencies(root string, doc *corpus.Document) []string {
	var out []string
	for _, link := range b.scanner.Scan(doc.Content) {
		if schemePattern.MatchString(link.Target) {
			continue
		}
		out = append(out, canonical(root, doc.Path, link.Target))
	}
	return out
}

// canonical resolves target against the directory of the linking document
// and expresses it relative to the series root.
func canonical(root, from, target string) string {
	if filepath.IsAbs(filepath.FromSlash(target)) {
		if rel, err := filepath.Rel(root, filepath.FromSlash(target)); err == nil {
			return filepath.ToSlash(rel)
		}
		return target
	}
	return path.Join(path.Dir(from), target)
}
