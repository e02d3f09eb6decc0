package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	body := []byte("# Guide `v2`\n\nIntro\n\n## Setup *fast*\n\n```md\n# not a heading\n```\n\nSetext\n------\n")

	require.Equal(t, []Heading{
		{Level: 1, Text: "Guide v2"},
		{Level: 2, Text: "Setup fast"},
		{Level: 2, Text: "Setext"},
	}, Outline(body))
}

func TestTitle(t *testing.T) {
	require.Equal(t, "AI 에이전트 가이드", Title([]byte("Intro\n\n# AI 에이전트 가이드\n\n# Second\n")))
	require.Empty(t, Title([]byte("## Only level two\n")))
}
