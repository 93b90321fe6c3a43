// Package materialised models the materialised aggregation documents this
// service writes: one per (resourceType, externalKey), each caching the set
// of neighbour entities reachable from the source document it summarises
// (§3).
package materialised

import (
	"time"

	"github.com/google/uuid"
)

// KeyedRef is one entry of a neighbour projection's "keys" side: the
// composite external key of a neighbour paired with its gamedayId. Stored as
// an ordered collection rather than a BSON sub-document keyed by the
// external key itself, because external keys may contain characters BSON
// field names forbid (the separators) — the "ordered collection" alternative
// Open Question (a) explicitly allows.
type KeyedRef struct {
	ExternalKey string    `bson:"externalKey" json:"externalKey"`
	GamedayID   uuid.UUID `bson:"gamedayId" json:"gamedayId"`
}

// Projection is one neighbour type's two parallel fields: a deduplicated
// collection of gamedayId values and the externalKey -> gamedayId mapping
// that produced them (§3, I2).
type Projection struct {
	IDs  []uuid.UUID `bson:"ids" json:"ids"`
	Keys []KeyedRef  `bson:"keys" json:"keys"`
}

// KeySet returns the projection's external keys as a set, used by the
// reconciler's diff algorithm (§4.5).
func (p Projection) KeySet() map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, len(p.Keys))
	for _, k := range p.Keys {
		out[k.ExternalKey] = k.GamedayID
	}
	return out
}

// Document is one materialised aggregation entity (§3).
type Document struct {
	ResourceType    string                `bson:"resourceType" json:"resourceType"`
	ExternalKey     string                `bson:"externalKey" json:"externalKey"`
	GamedayID       uuid.UUID             `bson:"gamedayId" json:"gamedayId"`
	ExternalID      string                `bson:"_externalId" json:"_externalId"`
	ExternalIDScope string                `bson:"_externalIdScope" json:"_externalIdScope"`
	Name            string                `bson:"name,omitempty" json:"name,omitempty"`
	LastUpdated     time.Time             `bson:"lastUpdated" json:"lastUpdated"`
	Neighbours      map[string]Projection `bson:"neighbours" json:"neighbours"`
}

// NeighbourTypes returns the set of neighbour tags this document carries, in
// no particular order (map iteration order), used by the reconciler to walk "every neighbour type the
// source participates in" on a key move (§4.5).
func (d *Document) NeighbourTypes() []string {
	types := make([]string, 0, len(d.Neighbours))
	for t := range d.Neighbours {
		types = append(types, t)
	}
	return types
}

// Neighbour returns the projection for a neighbour tag, or the zero value if
// the document does not carry that neighbour type.
func (d *Document) Neighbour(tag string) Projection {
	if d.Neighbours == nil {
		return Projection{}
	}
	return d.Neighbours[tag]
}

// SetNeighbour installs a neighbour tag's projection, deduplicating both
// sides per I2. A nil or empty facet result still installs an empty
// projection so the document's key set for that tag is the empty set
// (required for the reconciler's diff against a prior build).
func (d *Document) SetNeighbour(tag string, ids []uuid.UUID, keys map[string]uuid.UUID) {
	if d.Neighbours == nil {
		d.Neighbours = make(map[string]Projection)
	}

	seenIDs := make(map[uuid.UUID]struct{}, len(ids))
	dedupIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seenIDs[id]; ok {
			continue
		}
		seenIDs[id] = struct{}{}
		dedupIDs = append(dedupIDs, id)
	}

	refs := make([]KeyedRef, 0, len(keys))
	for k, id := range keys {
		refs = append(refs, KeyedRef{ExternalKey: k, GamedayID: id})
	}

	d.Neighbours[tag] = Projection{IDs: dedupIDs, Keys: refs}
}

// Ref is the minimal (resourceType, gamedayId, externalKey) identity the
// reconciler threads through bulk operations against peers (§4.5).
type Ref struct {
	ResourceType string
	GamedayID    uuid.UUID
	ExternalKey  string
}

// BulkOpKind distinguishes the two operation shapes the reconciler emits.
type BulkOpKind int

const (
	// BulkOpRemove pulls Source from Peer's reciprocal projection for Tag.
	BulkOpRemove BulkOpKind = iota
	// BulkOpAdd upserts Peer (creating it if absent) and adds Source to its
	// reciprocal projection for Tag.
	BulkOpAdd
)

func (k BulkOpKind) String() string {
	if k == BulkOpAdd {
		return "add"
	}
	return "remove"
}

// BulkOp is one peer-targeted operation the reconciler emits, grouped by
// peer composite key so a peer touched by both a removal and an addition
// (a move within the same neighbour type) reaches a single terminal write
// per bulk submission (§4.5 Ordering).
type BulkOp struct {
	Kind             BulkOpKind
	PeerResourceType string
	PeerExternalKey  string
	Tag              string // the neighbour-type tag under which Source is filed on Peer
	Source           Ref
}
