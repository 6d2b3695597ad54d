package vault

import (
	"sort"
	"strings"
)

// GraphNode is one note in the knowledge graph.
type GraphNode struct {
	Slug  string
	Title string
}

// GraphEdge is a directed wiki-link between two notes.
type GraphEdge struct {
	From string
	To   string
}

// Graph is the node-link view over the vault.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// Graph builds the knowledge graph: one node per note, one edge per resolved
// [[wikilink]] occurrence. Links to unknown slugs and self-links are dropped;
// repeated links between the same pair collapse to one edge.
func (v *Vault) Graph() Graph {
	g := Graph{Nodes: make([]GraphNode, 0, len(v.Notes))}
	seen := map[GraphEdge]struct{}{}
	for _, n := range v.Notes {
		g.Nodes = append(g.Nodes, GraphNode{Slug: n.Slug, Title: n.Title})
		for _, target := range wikiLinks(n.Body) {
			if target == n.Slug {
				continue
			}
			if _, ok := v.bySlug[target]; !ok {
				continue
			}
			edge := GraphEdge{From: n.Slug, To: target}
			if _, dup := seen[edge]; dup {
				continue
			}
			seen[edge] = struct{}{}
			g.Edges = append(g.Edges, edge)
		}
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	return g
}

// wikiLinks extracts the [[target]] occurrences from a note body. A link may
// carry a display label after a pipe; only the target matters here.
func wikiLinks(body string) []string {
	var links []string
	for {
		start := strings.Index(body, "[[")
		if start < 0 {
			return links
		}
		body = body[start+2:]
		end := strings.Index(body, "]]")
		if end < 0 {
			return links
		}
		target := body[:end]
		body = body[end+2:]
		if label := strings.IndexByte(target, '|'); label >= 0 {
			target = target[:label]
		}
		target = strings.TrimSpace(target)
		if target != "" {
			links = append(links, target)
		}
	}
}
