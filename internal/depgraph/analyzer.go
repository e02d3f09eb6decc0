package depgraph

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/report"
	"git.home.luguber.info/inful/continuity/internal/util/sets"
)

// Analyze runs cycle detection followed by missing-dependency detection over
// the same graph.
func Analyze(root string, g *Graph) []report.DependencyIssue {
	issues := FindCycles(g)
	issues = append(issues, FindMissing(root, g)...)
	slog.Info("Dependency check complete", logfields.Check("dependencies"), logfields.Issues(len(issues)))
	return issues
}

// FindCycles runs a depth-first search from every document in lexical order,
// each with its own visited and recursion-stack sets. A document is reported
// when a cycle is reachable from it, so one cycle through k documents is
// reported once per document that reaches it.
func FindCycles(g *Graph) []report.DependencyIssue {
	var issues []report.DependencyIssue
	for _, start := range g.Nodes() {
		cycle := cycleFrom(g, start)
		if cycle == nil {
			continue
		}
		issues = append(issues, report.DependencyIssue{
			FilePath:          start,
			MissingDependency: "",
			IssueType:         report.KindCircularDependency,
			Message:           fmt.Sprintf("circular dependency detected from %s: %s", start, strings.Join(cycle, " -> ")),
		})
	}
	return issues
}

// cycleFrom returns the first cycle found from start as a closed path
// (first element repeated at the end), or nil.
func cycleFrom(g *Graph, start string) []string {
	visited := sets.New[string]()
	onStack := sets.New[string]()
	var stack []string

	var visit func(node string) []string
	visit = func(node string) []string {
		visited.Add(node)
		onStack.Add(node)
		stack = append(stack, node)

		for _, dep := range g.Targets(node) {
			if !visited.Has(dep) {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			} else if onStack.Has(dep) {
				i := slices.Index(stack, dep)
				return append(slices.Clone(stack[i:]), dep)
			}
		}

		onStack.Delete(node)
		stack = stack[:len(stack)-1]
		return nil
	}
	return visit(start)
}

// FindMissing reports every edge whose target is not an existing file under
// root. Targets escaping the root are reported without touching the filesystem.
func FindMissing(root string, g *Graph) []report.DependencyIssue {
	var issues []report.DependencyIssue
	for _, from := range g.Nodes() {
		for _, target := range g.Targets(from) {
			if exists(root, target) {
				continue
			}
			issues = append(issues, report.DependencyIssue{
				FilePath:          from,
				MissingDependency: target,
				IssueType:         report.KindMissingDependency,
				Message:           fmt.Sprintf("dependency does not exist: %s", target),
			})
		}
	}
	return issues
}

func exists(root, target string) bool {
	local := filepath.FromSlash(target)
	if !filepath.IsLocal(local) {
		return false
	}
	info, err := os.Stat(filepath.Join(root, local))
	return err == nil && !info.IsDir()
}
