package depgraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/report"
)

func writeSeries(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func build(t *testing.T, root string) *Graph {
	t.Helper()
	g, err := NewBuilder(corpus.NewLoader(corpus.Options{Workers: 3})).Build(context.Background(), root)
	require.NoError(t, err)
	return g
}

func TestBuild_CanonicalizesTargets(t *testing.T) {
	root := writeSeries(t, map[string]string{
		"intro.md":       "# Intro\n[setup](guide/setup.md) [ext](https://example.com/page.md)\n",
		"guide/setup.md": "# Setup\n[home](../intro.md) [self](./setup.md) [out](../../outside.md)\n",
		"guide/usage.md": "[setup](setup.md) [anchor](setup.md#install) [img](diagram.png)\n",
		"empty.md":       "no links\n",
	})

	g := build(t, root)
	assert.Equal(t, []string{"empty.md", "guide/setup.md", "guide/usage.md", "intro.md"}, g.Nodes())
	assert.Equal(t, []string{"guide/setup.md"}, g.Targets("intro.md"))
	assert.Equal(t, []string{"../outside.md", "guide/setup.md", "intro.md"}, g.Targets("guide/setup.md"))
	assert.Equal(t, []string{"guide/setup.md"}, g.Targets("guide/usage.md"), "links from two documents collide into one node")
	assert.Empty(t, g.Targets("empty.md"))
	assert.Equal(t, "Intro", g.Title("intro.md"))
	assert.Equal(t, "empty.md", g.Title("empty.md"))
	assert.Equal(t, 5, g.EdgeCount())
}

func TestFindCycles_ThreeDocumentCycle(t *testing.T) {
	root := writeSeries(t, map[string]string{
		"a.md": "[b](b.md)\n",
		"b.md": "[c](c.md)\n",
		"c.md": "[a](a.md)\n",
	})

	issues := FindCycles(build(t, root))
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.Equal(t, report.KindCircularDependency, issue.IssueType)
		assert.Contains(t, []string{"a.md", "b.md", "c.md"}, issue.FilePath)
		assert.Empty(t, issue.MissingDependency)
	}
	assert.Equal(t, "circular dependency detected from a.md: a.md -> b.md -> c.md -> a.md", issues[0].Message)
}

// One cycle is reported once per start document that reaches it.
func TestFindCycles_ReportsPerStartDocument(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a.md", "b.md")
	g.AddEdge("b.md", "a.md")
	g.AddEdge("entry.md", "a.md")
	g.AddNode("leaf.md", "")

	issues := FindCycles(g)
	require.Len(t, issues, 3)
	assert.Equal(t, "a.md", issues[0].FilePath)
	assert.Equal(t, "b.md", issues[1].FilePath)
	assert.Equal(t, "entry.md", issues[2].FilePath)
	assert.Equal(t, "circular dependency detected from entry.md: a.md -> b.md -> a.md", issues[2].Message)
}

func TestFindCycles_SelfLinkAndAcyclic(t *testing.T) {
	g := NewGraph()
	g.AddEdge("self.md", "self.md")
	g.AddEdge("x.md", "y.md")
	g.AddEdge("y.md", "z.md")
	g.AddEdge("x.md", "z.md")

	issues := FindCycles(g)
	require.Len(t, issues, 1)
	assert.Equal(t, "self.md", issues[0].FilePath)
}

func TestFindMissing(t *testing.T) {
	root := writeSeries(t, map[string]string{
		"a.md": "[m](missing.md) [b](b.md) [m2](missing.md)\n",
		"b.md": "[up](../escape.md)\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(root), "escape.md"), []byte("x"), 0o600))

	issues := FindMissing(root, build(t, root))
	require.Len(t, issues, 2)
	assert.Equal(t, report.DependencyIssue{
		FilePath:          "a.md",
		MissingDependency: "missing.md",
		IssueType:         report.KindMissingDependency,
		Message:           "dependency does not exist: missing.md",
	}, issues[0])
	assert.Equal(t, "../escape.md", issues[1].MissingDependency, "targets outside the root are never resolved")
}

func TestAnalyze_CyclesThenMissing(t *testing.T) {
	root := writeSeries(t, map[string]string{
		"a.md": "[b](b.md) [gone](gone.md)\n",
		"b.md": "[a](a.md)\n",
	})

	issues := Analyze(root, build(t, root))
	var got []report.IssueKind
	for _, i := range issues {
		got = append(got, i.IssueType)
	}
	assert.Equal(t, []report.IssueKind{
		report.KindCircularDependency,
		report.KindCircularDependency,
		report.KindMissingDependency,
	}, got)
}

func TestRender(t *testing.T) {
	g := NewGraph()
	g.AddNode("intro.md", `The "Intro"`)
	g.AddEdge("intro.md", "setup.md")
	g.AddEdge("intro.md", "gone.md")
	g.AddNode("setup.md", "Setup")

	text, err := Render(g, FormatText)
	require.NoError(t, err)
	assert.Contains(t, text, `┌─ intro.md (The "Intro")`)
	assert.Contains(t, text, "├── gone.md [missing]")
	assert.Contains(t, text, "└── setup.md\n")
	assert.Contains(t, text, "Total: 2 documents, 2 links")

	mermaid, err := Render(g, FormatMermaid)
	require.NoError(t, err)
	assert.Contains(t, mermaid, "```mermaid\ngraph TD\n")
	assert.Contains(t, mermaid, `n0["The #quot;Intro#quot;"]`)
	assert.Contains(t, mermaid, `n2["gone.md (missing)"]:::missing`)
	assert.Contains(t, mermaid, "n0 --> n1")

	dot, err := Render(g, FormatDOT)
	require.NoError(t, err)
	assert.Contains(t, dot, `"intro.md" -> "setup.md";`)
	assert.Contains(t, dot, `"gone.md" [label="gone.md", style=dashed];`)

	raw, err := Render(g, FormatJSON)
	require.NoError(t, err)
	var decoded jsonGraph
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, 3, decoded.TotalNodes)
	assert.Equal(t, 2, decoded.TotalLinks)
	assert.True(t, decoded.Nodes[2].Missing)

	_, err = Render(g, Format("svg"))
	require.Error(t, err)
}
