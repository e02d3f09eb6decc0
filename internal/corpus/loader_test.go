package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping permission-dependent test when running as root")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoader_Enumerate_RecursiveLexical(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "02-setup.md", "# Setup\n")
	writeFile(t, root, "01-intro.md", "# Intro\n")
	writeFile(t, root, "part2/01-advanced.md", "# Advanced\n")
	writeFile(t, root, ".drafts/wip.md", "# WIP\n")
	writeFile(t, root, "README.md", "# Readme\n")
	writeFile(t, root, "diagram.png", "png")

	paths, failures, err := NewLoader(Options{}).Enumerate(root)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, []string{".drafts/wip.md", "01-intro.md", "02-setup.md", "README.md", "part2/01-advanced.md"}, paths)
}

func TestLoader_Enumerate_MissingRoot(t *testing.T) {
	_, _, err := NewLoader(Options{}).Enumerate(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoader_Enumerate_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "x")
	_, _, err := NewLoader(Options{}).Enumerate(filepath.Join(root, "a.md"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestLoader_Load_ReadsDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01-intro.md", "---\ntitle: 소개\n---\n# Intro\n\nText\n")
	writeFile(t, root, "02-setup.md", "\xEF\xBB\xBF# Setup\r\nBody\r\n")

	c, err := NewLoader(Options{Workers: 4}).Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, c.Documents, 2)
	assert.Empty(t, c.Failures)

	intro := c.Documents[0]
	assert.Equal(t, "01-intro.md", intro.Path)
	assert.Equal(t, "소개", intro.Title)
	assert.Equal(t, filepath.Join(root, "01-intro.md"), intro.AbsPath)
	assert.Equal(t, root, intro.Dir())
	assert.Equal(t, "---", intro.Lines[0])
	assert.NotEmpty(t, intro.Fingerprint)

	setup := c.Documents[1]
	assert.Equal(t, "Setup", setup.Title, "BOM is stripped and the goldmark title is used")
	assert.Equal(t, "# Setup\r", setup.Lines[0])
}

func TestLoader_Load_NormalizesToNFC(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "\u1100\u1162\u110b\u116d\n")

	c, err := NewLoader(Options{}).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "개요\n", c.Documents[0].Content)
}

func TestLoader_Load_SkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.md", "# Good\n")
	writeFile(t, root, "binary.md", "\xff\xfe\xfd")

	c, err := NewLoader(Options{}).Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, c.Documents, 1)
	assert.Equal(t, "good.md", c.Documents[0].Path)
	require.Len(t, c.Failures, 1)
	assert.Equal(t, "binary.md", c.Failures[0].Path)
	assert.Equal(t, []string{"binary.md"}, c.FailedPaths())
}

func TestLoader_Load_SkipsPermissionDenied(t *testing.T) {
	skipIfRoot(t)
	root := t.TempDir()
	writeFile(t, root, "good.md", "# Good\n")
	writeFile(t, root, "locked.md", "# Locked\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.md"), 0o000))

	c, err := NewLoader(Options{}).Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, c.Documents, 1)
	require.Len(t, c.Failures, 1)
	assert.Equal(t, "locked.md", c.Failures[0].Path)
	assert.True(t, errors.HasCategory(c.Failures[0].Err, errors.CategoryFileSystem))
}

func TestLoader_Load_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(Options{}).Load(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCorpus_Digest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n")
	loader := NewLoader(Options{})

	first, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	again, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, first.Digest(), again.Digest())

	writeFile(t, root, "a.md", "# A changed\n")
	changed, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest(), changed.Digest())
}

func TestCorpus_ForEach_VisitsEveryDocument(t *testing.T) {
	c := &Corpus{Documents: []*Document{{Path: "a.md"}, {Path: "b.md"}, {Path: "c.md"}}}
	seen := make([]string, len(c.Documents))
	var calls atomic.Int32

	err := c.ForEach(context.Background(), 2, func(i int, doc *Document) {
		calls.Add(1)
		seen[i] = doc.Path
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, seen)
}
