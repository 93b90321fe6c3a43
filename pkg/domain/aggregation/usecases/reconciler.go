package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
)

// ReconcileReferencesUseCase implements the reference reconciler (C5, §4.5).
// BuildBulkOps is pure and unit-testable independent of the store; Reconcile
// wraps it with the store's bulk submission and the post-upsert gamedayId
// repair.
type ReconcileReferencesUseCase struct {
	Store out.Store
}

func NewReconcileReferencesUseCase(store out.Store) *ReconcileReferencesUseCase {
	return &ReconcileReferencesUseCase{Store: store}
}

// Reconcile diffs old against new, submits the resulting bulk operations,
// and repairs any peer created without a known gamedayId.
func (uc *ReconcileReferencesUseCase) Reconcile(ctx context.Context, source materialised.Ref, oldExternalKey string, old, newDoc *materialised.Document) (applied, failed int, err error) {
	ops := BuildBulkOps(source, oldExternalKey, old, newDoc)
	if len(ops) == 0 {
		return 0, 0, nil
	}

	applied, failed, err = uc.Store.BulkWriteMaterialised(ctx, ops, time.Now().UTC())
	if repairErr := uc.repairGamedayIDs(ctx, ops); repairErr != nil && err == nil {
		err = repairErr
	}
	return applied, failed, err
}

// BuildBulkOps implements the diff algorithm of §4.5: for each neighbour
// type, keys removed between old and new pull the source from the peer's
// reciprocal projection (tagged with source's own resourceType, per
// "the source's type projection" on the peer), keys added add it. When the
// source's own externalKey has moved, every neighbour type it participates
// in reconciles the old key out and the new key in, even for peers whose
// membership in the neighbour set is unchanged.
func BuildBulkOps(source materialised.Ref, oldExternalKey string, old, newDoc *materialised.Document) []materialised.BulkOp {
	tag := source.ResourceType
	moved := oldExternalKey != "" && oldExternalKey != source.ExternalKey

	var ops []materialised.BulkOp
	for _, nt := range unionNeighbourTypes(old, newDoc) {
		oldKeys := projectionKeySet(old, nt)
		newKeys := projectionKeySet(newDoc, nt)

		for key := range oldKeys {
			if _, stillPresent := newKeys[key]; stillPresent {
				if moved {
					ops = append(ops, removeOp(nt, key, tag, source, oldExternalKey))
					ops = append(ops, addOp(nt, key, tag, source))
				}
				continue
			}
			ops = append(ops, removeOp(nt, key, tag, source, oldExternalKey))
		}
		for key := range newKeys {
			if _, wasPresent := oldKeys[key]; wasPresent {
				continue
			}
			ops = append(ops, addOp(nt, key, tag, source))
		}
	}

	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Kind < ops[j].Kind })
	return ops
}

func removeOp(peerType, peerKey, tag string, source materialised.Ref, oldExternalKey string) materialised.BulkOp {
	return materialised.BulkOp{
		Kind:             materialised.BulkOpRemove,
		PeerResourceType: peerType,
		PeerExternalKey:  peerKey,
		Tag:              tag,
		Source:           materialised.Ref{ResourceType: source.ResourceType, GamedayID: source.GamedayID, ExternalKey: oldExternalKey},
	}
}

func addOp(peerType, peerKey, tag string, source materialised.Ref) materialised.BulkOp {
	return materialised.BulkOp{
		Kind:             materialised.BulkOpAdd,
		PeerResourceType: peerType,
		PeerExternalKey:  peerKey,
		Tag:              tag,
		Source:           source,
	}
}

func projectionKeySet(doc *materialised.Document, tag string) map[string]uuid.UUID {
	if doc == nil {
		return map[string]uuid.UUID{}
	}
	return doc.Neighbour(tag).KeySet()
}

func unionNeighbourTypes(old, newDoc *materialised.Document) []string {
	seen := make(map[string]struct{})
	var types []string
	add := func(doc *materialised.Document) {
		if doc == nil {
			return
		}
		for _, t := range doc.NeighbourTypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	add(old)
	add(newDoc)
	sort.Strings(types)
	return types
}
