package ioc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// sourceCollections lists every source collection named in §6 that the
// single-fetch and facet lookups read from.
var sourceCollections = []entities.ResourceType{
	entities.ResourceTypeCompetition,
	entities.ResourceTypeStage,
	entities.ResourceTypeEvent,
	entities.ResourceTypeTeam,
	entities.ResourceTypeClub,
	entities.ResourceTypeVenue,
	entities.ResourceTypeSportsPerson,
	entities.ResourceTypeStaff,
	entities.ResourceTypeKeyMoment,
	entities.ResourceTypeRanking,
	entities.ResourceTypeSgo,
	entities.ResourceTypeNation,
}

// BootstrapIndexes probes and creates the indexes the concurrency model (§5)
// requires: a unique (resourceType, externalKey) and a non-unique
// (resourceType, gamedayId) on the materialised sink, and an
// (externalIdScope, externalId) index on every source collection. It runs
// once at startup and is idempotent.
func BootstrapIndexes(ctx context.Context, store out.Store, sinkCollection string) error {
	errCount := 0

	if err := store.CreateIndex(ctx, sinkCollection, "idx_resourceType_externalKey",
		[]out.IndexKey{{Field: "resourceType"}, {Field: "externalKey"}}, true); err != nil {
		slog.ErrorContext(ctx, "failed to create sink unique index", "error", err)
		errCount++
	}

	if err := store.CreateIndex(ctx, sinkCollection, "idx_resourceType_gamedayId",
		[]out.IndexKey{{Field: "resourceType"}, {Field: "gamedayId"}}, false); err != nil {
		slog.ErrorContext(ctx, "failed to create sink gamedayId index", "error", err)
		errCount++
	}

	for _, rt := range sourceCollections {
		collection := rt.Collection()
		if err := store.CreateIndex(ctx, collection, "idx_externalIdScope_externalId",
			[]out.IndexKey{{Field: "externalIdScope"}, {Field: "externalId"}}, false); err != nil {
			slog.ErrorContext(ctx, "failed to create source index", "collection", collection, "error", err)
			errCount++
		}
	}

	if errCount > 0 {
		return common.NewErrStoreUnavailable(fmt.Errorf("failed to create %d indexes", errCount))
	}

	slog.InfoContext(ctx, "index bootstrap complete", "collections", len(sourceCollections)+1)
	return nil
}
