package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, ".md", cfg.Series.Extension)
	assert.Equal(t, 6, cfg.Style.MaxHeadingDepth)
	assert.Len(t, cfg.Style.RequiredSections, 3)
	assert.NotEmpty(t, cfg.Terminology)
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
style:
  required_sections: ["Overview", "Objectives", "Next steps"]
analysis:
  file_timeout: 2s
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Overview", "Objectives", "Next steps"}, cfg.Style.RequiredSections)
	assert.Equal(t, 6, cfg.Style.MaxHeadingDepth)
	assert.Equal(t, 2*time.Second, cfg.Analysis.FileTimeout)
	assert.Equal(t, Default().Terminology[0].Canonical, cfg.Terminology[0].Canonical)
	assert.Positive(t, cfg.Analysis.Workers)
}

func TestParse_TerminologyReplacesDictionary(t *testing.T) {
	cfg, err := Parse([]byte(`
terminology:
  - canonical: "agent"
    synonyms: ["bot"]
`))
	require.NoError(t, err)
	require.Len(t, cfg.Terminology, 1)
	assert.Equal(t, "agent", cfg.Terminology[0].Canonical)
}

func TestParse_EmptyRequiredSectionsDisablesCheck(t *testing.T) {
	cfg, err := Parse([]byte("style:\n  required_sections: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Style.RequiredSections)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"extension without dot", "series:\n  extension: md\n"},
		{"negative workers", "analysis:\n  workers: -1\n"},
		{"rule without synonyms", "terminology:\n  - canonical: x\n    synonyms: []\n"},
		{"bad nats url", "notify:\n  nats_url: \"not a url\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("style: [unterminated"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParse_NormalizesTermsToNFC(t *testing.T) {
	// "개요" in decomposed (NFD) jamo form.
	decomposed := "\u1100\u1162\u110b\u116d"
	cfg, err := Parse([]byte("style:\n  required_sections: [\"" + decomposed + "\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, "개요", cfg.Style.RequiredSections[0])
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("CONTINUITY_TEST_DB", "/tmp/history.db")
	path := filepath.Join(t.TempDir(), "continuity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  path: ${CONTINUITY_TEST_DB}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "continuity.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Style.RequiredSections, cfg.Style.RequiredSections)
	assert.Equal(t, Default().Analysis.FileTimeout, cfg.Analysis.FileTimeout)
	assert.Equal(t, runtime.NumCPU(), cfg.Analysis.Workers)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "workers:")

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}
