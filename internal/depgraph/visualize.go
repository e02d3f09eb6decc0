package depgraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// Format is an output format for Render.
type Format string

const (
	FormatText    Format = "text"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
)

// SupportedFormats lists the formats accepted by Render.
func SupportedFormats() []Format {
	return []Format{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// Render draws g in the given format. Nodes are labelled with document titles.
func Render(g *Graph, format Format) (string, error) {
	switch format {
	case FormatText:
		return renderText(g), nil
	case FormatMermaid:
		return renderMermaid(g), nil
	case FormatDOT:
		return renderDOT(g), nil
	case FormatJSON:
		return renderJSON(g)
	default:
		return "", errors.ValidationError("unsupported graph format").
			WithContext("format", string(format)).
			Build()
	}
}

// allNodes returns source documents followed by targets that are not documents.
func allNodes(g *Graph) []string {
	nodes := g.Nodes()
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	var dangling []string
	for _, n := range nodes {
		for _, t := range g.Targets(n) {
			if !seen[t] {
				seen[t] = true
				dangling = append(dangling, t)
			}
		}
	}
	return append(nodes, dangling...)
}

func renderText(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("Document Dependency Graph\n")
	sb.WriteString("=========================\n\n")

	nodes := g.Nodes()
	for _, n := range nodes {
		fmt.Fprintf(&sb, "┌─ %s", n)
		if title := g.Title(n); title != n {
			fmt.Fprintf(&sb, " (%s)", title)
		}
		sb.WriteString("\n")

		targets := g.Targets(n)
		for j, t := range targets {
			prefix := "├──"
			if j == len(targets)-1 {
				prefix = "└──"
			}
			marker := ""
			if !g.HasNode(t) {
				marker = " [missing]"
			}
			fmt.Fprintf(&sb, "│ %s %s%s\n", prefix, t, marker)
		}
		sb.WriteString("│\n")
	}

	fmt.Fprintf(&sb, "\nTotal: %d documents, %d links\n", len(nodes), g.EdgeCount())
	return sb.String()
}

func renderMermaid(g *Graph) string {
	ids := nodeIDs(g)

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")
	for _, n := range allNodes(g) {
		label := strings.ReplaceAll(g.Title(n), `"`, "#quot;")
		if g.HasNode(n) {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids[n], label)
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s (missing)\"]:::missing\n", ids[n], label)
		}
	}
	sb.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, t := range g.Targets(n) {
			fmt.Fprintf(&sb, "    %s --> %s\n", ids[n], ids[t])
		}
	}
	sb.WriteString("    classDef missing stroke-dasharray: 5 5\n")
	sb.WriteString("```\n")
	return sb.String()
}

func renderDOT(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph SeriesDependencies {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")

	for _, n := range allNodes(g) {
		if g.HasNode(n) {
			fmt.Fprintf(&sb, "    %q [label=%q];\n", n, g.Title(n))
		} else {
			fmt.Fprintf(&sb, "    %q [label=%q, style=dashed];\n", n, n)
		}
	}
	sb.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, t := range g.Targets(n) {
			fmt.Fprintf(&sb, "    %q -> %q;\n", n, t)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

type jsonNode struct {
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Missing bool     `json:"missing,omitempty"`
	Links   []string `json:"links"`
}

type jsonGraph struct {
	Nodes      []jsonNode `json:"nodes"`
	TotalNodes int        `json:"totalNodes"`
	TotalLinks int        `json:"totalLinks"`
}

func renderJSON(g *Graph) (string, error) {
	out := jsonGraph{Nodes: []jsonNode{}, TotalLinks: g.EdgeCount()}
	for _, n := range allNodes(g) {
		node := jsonNode{Path: n, Title: g.Title(n), Missing: !g.HasNode(n), Links: g.Targets(n)}
		out.Nodes = append(out.Nodes, node)
	}
	out.TotalNodes = len(out.Nodes)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to encode graph").Build()
	}
	return string(data) + "\n", nil
}

// nodeIDs assigns stable Mermaid identifiers; paths contain characters Mermaid rejects.
func nodeIDs(g *Graph) map[string]string {
	ids := make(map[string]string)
	for i, n := range allNodes(g) {
		ids[n] = fmt.Sprintf("n%d", i)
	}
	return ids
}
