// Package traversal implements the edge graph, traversal planner (C6, §4.6)
// and the materialised list query executor (C7, §4.7).
package traversal

import (
	"sort"

	"github.com/gameday/aggregation-api/pkg/domain/common"
)

// Edge is one declared (fromType, field) -> toType relationship. Field
// doubles as the neighbour tag on the "from" type's materialised document
// (§4.3's facet tables define the same tags this edge table walks).
type Edge struct {
	Field string
	To    string
}

// edgeTable is the fixed directed edge graph of §4.6, grounded directly on
// the per-type facet membership table of §4.3.
var edgeTable = map[string][]Edge{
	"competition": {
		{Field: "sgo", To: "sgo"},
		{Field: "stage", To: "stage"},
		{Field: "event", To: "event"},
		{Field: "team", To: "team"},
		{Field: "sportsperson", To: "sportsperson"},
		{Field: "venue", To: "venue"},
	},
	"stage": {
		{Field: "competition", To: "competition"},
		{Field: "event", To: "event"},
		{Field: "venue", To: "venue"},
		{Field: "team", To: "team"},
		{Field: "sportsperson", To: "sportsperson"},
	},
	"event": {
		{Field: "stage", To: "stage"},
		{Field: "competition", To: "competition"},
		{Field: "sgo", To: "sgo"},
		{Field: "venue", To: "venue"},
		{Field: "team", To: "team"},
		{Field: "sportsperson", To: "sportsperson"},
		{Field: "keymoment", To: "keymoment"},
		{Field: "ranking", To: "ranking"},
	},
	"team": {
		{Field: "club", To: "club"},
		{Field: "nation", To: "nation"},
		{Field: "venue", To: "venue"},
		{Field: "event", To: "event"},
		{Field: "sportsperson", To: "sportsperson"},
		{Field: "staff", To: "staff"},
		{Field: "sgo", To: "sgo"},
		{Field: "ranking", To: "ranking"},
	},
	"club": {
		{Field: "team", To: "team"},
		{Field: "venue", To: "venue"},
		{Field: "sgo", To: "sgo"},
		{Field: "staff", To: "staff"},
	},
	"sportsperson": {
		{Field: "club", To: "club"},
		{Field: "team", To: "team"},
		{Field: "event", To: "event"},
		{Field: "staff", To: "staff"},
		{Field: "ranking", To: "ranking"},
	},
	"sgo": {
		{Field: "competition", To: "competition"},
		{Field: "team", To: "team"},
		{Field: "club", To: "club"},
		{Field: "venue", To: "venue"},
		{Field: "nation", To: "nation"},
		{Field: "sgo", To: "sgo"},
	},
	"nation": {
		{Field: "sgo", To: "sgo"},
		{Field: "team", To: "team"},
		{Field: "venue", To: "venue"},
	},
	"staff": {
		{Field: "sportsperson", To: "sportsperson"},
		{Field: "team", To: "team"},
		{Field: "club", To: "club"},
		{Field: "nation", To: "nation"},
	},
	"venue":     {},
	"keymoment": {},
	"ranking":   {},
}

// Hop is one edge traversal of a path, identified by (from.field->to, depth)
// per the GLOSSARY.
type Hop struct {
	From  string
	Field string
	To    string
	Depth int
}

func hopKey(h Hop) string {
	return h.From + "." + h.Field + "->" + h.To
}

// ShortestPath runs breadth-first search over edgeTable from rootType to
// targetType, breaking ties by field-name lexicographic order so the
// returned path is deterministic (§4.6). The empty path is returned when
// rootType == targetType. An unreachable target surfaces NoPathFromXToY.
func ShortestPath(rootType, targetType string) ([]Hop, error) {
	if rootType == targetType {
		return nil, nil
	}

	type frame struct {
		typ  string
		path []Hop
	}

	visited := map[string]bool{rootType: true}
	queue := []frame{{typ: rootType}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges := append([]Edge(nil), edgeTable[cur.typ]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].Field < edges[j].Field })

		for _, e := range edges {
			if visited[e.To] {
				continue
			}
			hop := Hop{From: cur.typ, Field: e.Field, To: e.To, Depth: len(cur.path)}
			path := append(append([]Hop(nil), cur.path...), hop)

			if e.To == targetType {
				return path, nil
			}
			visited[e.To] = true
			queue = append(queue, frame{typ: e.To, path: path})
		}
	}

	return nil, common.NewErrNoPathFromXToY(rootType, targetType)
}
