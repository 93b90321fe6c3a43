package traversal

import (
	"fmt"
	"sort"

	"github.com/gameday/aggregation-api/pkg/domain/common"
)

// Step is one entry of a merged traversal plan, identified by
// (from.field->to, depth) so the same hop shared by several target paths is
// walked once.
type Step struct {
	Hop
}

// Plan runs ShortestPath once per target and merges the resulting paths into
// a single, depth-ordered, deduplicated step list (§4.6). It also returns
// each target's own path so the executor can locate its terminal ids.
func Plan(rootType string, targetTypes []string) ([]Step, map[string][]Hop, error) {
	if len(targetTypes) == 0 {
		return nil, nil, common.NewErrInvalidInput("traversal: no target types given")
	}

	paths := make(map[string][]Hop, len(targetTypes))
	var allHops []Hop
	for _, t := range targetTypes {
		path, err := ShortestPath(rootType, t)
		if err != nil {
			return nil, nil, err
		}
		paths[t] = path
		allHops = append(allHops, path...)
	}

	sort.SliceStable(allHops, func(i, j int) bool {
		if allHops[i].Depth != allHops[j].Depth {
			return allHops[i].Depth < allHops[j].Depth
		}
		return hopKey(allHops[i]) < hopKey(allHops[j])
	})

	seen := make(map[string]struct{}, len(allHops))
	steps := make([]Step, 0, len(allHops))
	for _, h := range allHops {
		k := fmt.Sprintf("%d|%s", h.Depth, hopKey(h))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		steps = append(steps, Step{Hop: h})
	}

	return steps, paths, nil
}
