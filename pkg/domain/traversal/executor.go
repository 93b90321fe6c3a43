package traversal

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
)

// Executor implements in.QueryAPI (C7, §4.7): it plans the traversal once,
// walks it hop by hop against the materialised store, and slices/sorts each
// target's result set.
type Executor struct {
	Store out.Store
}

func NewExecutor(store out.Store) *Executor {
	return &Executor{Store: store}
}

var _ in.QueryAPI = (*Executor)(nil)

// layer accumulates, per (type, depth), the union of gamedayIds reached by
// every step of the plan landing on that type at that depth. A type can be
// reached via more than one hop at the same depth when two target paths
// diverge through different intermediates; their outputs are merged so
// later hops "From" that type see the full set.
type layer map[string]map[int][]uuid.UUID

func (l layer) add(typ string, depth int, ids []uuid.UUID) {
	if l[typ] == nil {
		l[typ] = make(map[int][]uuid.UUID)
	}
	l[typ][depth] = dedupUUIDs(append(l[typ][depth], ids...))
}

func (l layer) get(typ string, depth int) []uuid.UUID {
	return l[typ][depth]
}

func dedupUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Query runs the planner then the execution loop described in §4.7: match
// the root, walk the merged step list hop by hop (each hop fetches the
// materialised peers of its "from" ids and reads their "field" neighbour
// projection), then for each requested target slice included/overflow by
// its limit and fetch+sort the included documents.
func (e *Executor) Query(ctx context.Context, req in.QueryRequest) (*in.QueryResult, error) {
	root, found, err := e.Store.FindMaterialised(ctx, req.RootType, req.RootExternalKey)
	if err != nil {
		return nil, common.NewErrStoreUnavailable(err)
	}
	if !found {
		return nil, common.NewErrNotFound(req.RootType, "externalKey", req.RootExternalKey)
	}

	targetTypes := make([]string, len(req.Targets))
	for i, t := range req.Targets {
		targetTypes[i] = t.Type
	}

	steps, paths, err := Plan(req.RootType, targetTypes)
	if err != nil {
		return nil, err
	}

	reached := make(layer)

	for _, step := range steps {
		if err := checkDeadline(ctx, req.Deadline); err != nil {
			return nil, err
		}

		if step.Depth == 0 {
			reached.add(step.To, step.Depth, root.Neighbour(step.Field).IDs)
			continue
		}
		fromIDs := reached.get(step.From, step.Depth-1)
		if len(fromIDs) == 0 {
			reached.add(step.To, step.Depth, nil)
			continue
		}

		peers, err := e.Store.FindManyMaterialisedByIDs(ctx, step.From, fromIDs)
		if err != nil {
			return nil, common.NewErrStoreUnavailable(err)
		}

		var hopIDs []uuid.UUID
		for _, peer := range peers {
			hopIDs = append(hopIDs, peer.Neighbour(step.Field).IDs...)
		}
		reached.add(step.To, step.Depth, hopIDs)
	}

	result := &in.QueryResult{
		RootType:        req.RootType,
		RootExternalKey: req.RootExternalKey,
		Results:         make(map[string]in.QueryTargetResult, len(req.Targets)),
	}

	hasBudget := req.TotalMax > 0
	remaining := req.TotalMax

	for _, target := range req.Targets {
		if err := checkDeadline(ctx, req.Deadline); err != nil {
			return nil, err
		}

		var ids []uuid.UUID
		if target.Type == req.RootType {
			ids = []uuid.UUID{root.GamedayID}
		} else {
			path := paths[target.Type]
			depth := len(path) - 1
			ids = reached.get(target.Type, depth)
		}

		included, overflow := splitLimit(ids, target.Limit, remaining, hasBudget)
		if hasBudget {
			remaining -= len(included)
		}

		var items []*materialised.Document
		if target.Type == req.RootType {
			items = []*materialised.Document{root}
		} else if len(included) > 0 {
			items, err = e.Store.FindManyMaterialisedByIDs(ctx, target.Type, included)
			if err != nil {
				return nil, common.NewErrStoreUnavailable(err)
			}
		}

		items = sortDocs(items, included, req.SortBy)

		tr := in.QueryTargetResult{Items: items}
		if len(overflow) > 0 {
			tr.OverflowType = target.Type
			tr.OverflowIDs = make([]string, len(overflow))
			for i, id := range overflow {
				tr.OverflowIDs[i] = id.String()
			}
		}
		result.Results[target.Type] = tr
	}

	return result, nil
}

func checkDeadline(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return common.NewErrTimeout("query")
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return common.NewErrTimeout("query")
	}
	return nil
}

// splitLimit takes the first N ids as "included" (fetched and returned) and
// the remainder as "overflow" (ids only). N is the per-type limit (<=0 means
// unlimited), further capped by the cross-target totalRemaining budget when
// hasBudget is set (§8 scenario S4: "min of total-max leftover and reachable").
func splitLimit(ids []uuid.UUID, limit, totalRemaining int, hasBudget bool) (included, overflow []uuid.UUID) {
	n := len(ids)
	if limit > 0 && limit < n {
		n = limit
	}
	if hasBudget && totalRemaining < n {
		n = totalRemaining
	}
	if n < 0 {
		n = 0
	}
	return ids[:n], ids[n:]
}

// sortDocs orders the fetched documents per §4.7's three modes. Insertion
// order reorders the store's (unordered) fetch result to match includedIDs.
func sortDocs(docs []*materialised.Document, includedIDs []uuid.UUID, sortBy in.SortBy) []*materialised.Document {
	switch sortBy {
	case in.SortByGamedayIDAsc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].GamedayID.String() < docs[j].GamedayID.String() })
		return docs
	case in.SortByLastUpdatedDesc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].LastUpdated.After(docs[j].LastUpdated) })
		return docs
	default: // SortByInsertion
		byID := make(map[uuid.UUID]*materialised.Document, len(docs))
		for _, d := range docs {
			byID[d.GamedayID] = d
		}
		ordered := make([]*materialised.Document, 0, len(includedIDs))
		for _, id := range includedIDs {
			if d, ok := byID[id]; ok {
				ordered = append(ordered, d)
			}
		}
		return ordered
	}
}
