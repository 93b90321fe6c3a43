// Package out declares the document-store capability the core consumes
// (§4.8, C8). Implementations live under pkg/infra/db; the core only ever
// depends on this interface.
package out

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
)

// IndexKey is one field of a compound index definition.
type IndexKey struct {
	Field string
	Desc  bool
}

// Store is the document-store capability named in §4.8: findOne,
// countMatching, aggregate (folded into FindMany/FindManyMaterialisedByIDs
// for the in-process facet/traversal resolution this implementation
// chooses, §9 design note), bulkWrite, createIndex, indexExists,
// collectionExists.
type Store interface {
	// FindOne decodes the first source document matching filter in
	// collection into out (a pointer), reporting false if none matched.
	FindOne(ctx context.Context, collection string, filter map[string]any, out any) (bool, error)

	// FindMany decodes every source document matching filter in collection
	// into out (a pointer to a slice).
	FindMany(ctx context.Context, collection string, filter map[string]any, out any) error

	// CountMatching reports how many documents in collection match filter,
	// used by the existence probe (§4.4 step 2).
	CountMatching(ctx context.Context, collection string, filter map[string]any) (int64, error)

	// FindMaterialised reads one materialised document by its unique key.
	FindMaterialised(ctx context.Context, resourceType, externalKey string) (*materialised.Document, bool, error)

	// FindManyMaterialisedByIDs reads every materialised document of
	// resourceType whose gamedayId is in ids, used by the query executor
	// both to hop between plan steps and to fetch included target
	// documents (§4.6, §4.7).
	FindManyMaterialisedByIDs(ctx context.Context, resourceType string, ids []uuid.UUID) ([]*materialised.Document, error)

	// UpsertMaterialised replaces (or inserts) the materialised document
	// identified by (ResourceType, ExternalKey) with doc, the $merge
	// upsert of C3 step 5.
	UpsertMaterialised(ctx context.Context, doc *materialised.Document) error

	// BulkWriteMaterialised applies the reconciler's peer operations as a
	// single bulk submission, removals preceding additions for the same
	// peer (§4.5 Ordering). now stamps lastUpdated on every touched peer.
	// Returns the count of operations actually applied and failed; a
	// partial failure is reported through a non-zero failed count with a
	// nil err, and err is set only when the submission fails as a whole.
	BulkWriteMaterialised(ctx context.Context, ops []materialised.BulkOp, now time.Time) (applied, failed int, err error)

	// CreateIndex creates a (possibly compound, possibly unique) index on
	// collection if absent.
	CreateIndex(ctx context.Context, collection, name string, keys []IndexKey, unique bool) error

	// IndexExists reports whether collection already carries an index
	// named name.
	IndexExists(ctx context.Context, collection, name string) (bool, error)

	// CollectionExists reports whether collection has been created.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
