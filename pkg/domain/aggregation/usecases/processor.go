// Package usecases implements the processor (C4) and reference reconciler
// (C5): the write-path orchestration around the pipeline assembler.
package usecases

import (
	"context"
	"strings"

	"github.com/gameday/aggregation-api/pkg/domain/aggregation/pipeline"
	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// BuildState is the processor's state machine (§4.4 REDESIGN FLAGS: a
// closed tagged variant, not an if/else ladder). Invalid and Missing are
// early-exit states surfaced as errors; Built and Reconciled are terminal
// success states.
type BuildState int

const (
	BuildInvalid BuildState = iota
	BuildMissing
	BuildBuilt
	BuildReconciled
)

// buildSpec is the per-route-shape resolution of a BuildRequest into the
// source collection/filter it probes and the pipeline call it runs.
type buildSpec struct {
	resourceType string
	collection   string
	filter       map[string]any
	externalKey  string
	run          func(ctx context.Context, store out.Store) (*materialised.Document, bool, error)
}

func resolveBuildSpec(req in.BuildRequest) (buildSpec, error) {
	switch {
	case req.EntityType != "":
		rt := entities.Normalise(req.EntityType)
		collection := rt.Collection()
		if collection == "" || req.Scope == "" || req.ID == "" {
			return buildSpec{}, common.NewErrInvalidInput("build: unknown entity type or empty (scope, id)")
		}
		return buildSpec{
			resourceType: string(rt),
			collection:   collection,
			filter:       map[string]any{"externalIdScope": req.Scope, "externalId": req.ID},
			externalKey:  keycodec.EncodeEntityKey(req.ID, req.Scope),
			run: func(ctx context.Context, store out.Store) (*materialised.Document, bool, error) {
				return pipeline.AssembleEntity(ctx, store, rt, req.Scope, req.ID)
			},
		}, nil

	case req.StaffRole != "":
		if req.StaffSportsPersonID == "" || req.StaffSportsPersonScope == "" || req.StaffOrgID == "" || req.StaffOrgScope == "" {
			return buildSpec{}, common.NewErrInvalidInput("build: staff request missing identifying fields")
		}
		key, err := keycodec.EncodeStaffKey(req.StaffSportsPersonID, req.StaffSportsPersonScope, req.StaffRole, req.StaffOrgID, req.StaffOrgScope)
		if err != nil {
			return buildSpec{}, common.NewErrInvalidInput(err.Error())
		}
		idField, scopeField := staffOrgFilterFields(req.StaffRole)
		return buildSpec{
			resourceType: string(entities.ResourceTypeStaff),
			collection:   entities.ResourceTypeStaff.Collection(),
			filter: map[string]any{
				"sportsPersonId":    req.StaffSportsPersonID,
				"sportsPersonScope": req.StaffSportsPersonScope,
				"role":              string(req.StaffRole),
				idField:             req.StaffOrgID,
				scopeField:          req.StaffOrgScope,
			},
			externalKey: key,
			run: func(ctx context.Context, store out.Store) (*materialised.Document, bool, error) {
				return pipeline.AssembleStaff(ctx, store, req.StaffSportsPersonScope, req.StaffSportsPersonID, req.StaffRole, req.StaffOrgScope, req.StaffOrgID)
			},
		}, nil

	case req.KMEventID != "":
		if req.KMEventScope == "" || req.KMType == "" || req.KMDateTime == "" {
			return buildSpec{}, common.NewErrInvalidInput("build: key-moment request missing identifying fields")
		}
		key := keycodec.EncodeKeyMomentKey(req.KMDateTime, req.KMEventScope, req.KMEventID, req.KMType, req.KMSubType)
		return buildSpec{
			resourceType: string(entities.ResourceTypeKeyMoment),
			collection:   entities.ResourceTypeKeyMoment.Collection(),
			filter: map[string]any{
				"eventId":    req.KMEventID,
				"eventScope": req.KMEventScope,
				"type":       req.KMType,
				"subType":    req.KMSubType,
				"dateTime":   req.KMDateTime,
			},
			externalKey: key,
			run: func(ctx context.Context, store out.Store) (*materialised.Document, bool, error) {
				return pipeline.AssembleKeyMoment(ctx, store, req.KMEventScope, req.KMEventID, req.KMType, req.KMSubType, req.KMDateTime)
			},
		}, nil

	case req.RankingLocusType != "":
		if req.RankingLocusID == "" || req.RankingLocusScope == "" || req.RankingSubjID == "" || req.RankingSubjScope == "" {
			return buildSpec{}, common.NewErrInvalidInput("build: ranking request missing identifying fields")
		}
		keyInput := keycodec.RankingKeyInput{DateTime: req.RankingDateTime, Position: req.RankingPosition}
		switch strings.ToLower(req.RankingLocusType) {
		case "stage":
			keyInput.StageID, keyInput.StageScope = req.RankingLocusID, req.RankingLocusScope
		case "event":
			keyInput.EventID, keyInput.EventScope = req.RankingLocusID, req.RankingLocusScope
		default:
			return buildSpec{}, common.NewErrInvalidInput("build: ranking locus type must be stage or event")
		}
		switch strings.ToLower(req.RankingSubjType) {
		case "team":
			keyInput.TeamID, keyInput.TeamScope = req.RankingSubjID, req.RankingSubjScope
		case "sportsperson":
			keyInput.SportsPersonID, keyInput.SportsPersonScope = req.RankingSubjID, req.RankingSubjScope
		default:
			return buildSpec{}, common.NewErrInvalidInput("build: ranking subject type must be team or sportsPerson")
		}
		key, err := keycodec.EncodeRankingKey(keyInput)
		if err != nil {
			return buildSpec{}, common.NewErrInvalidInput(err.Error())
		}
		filter := map[string]any{"dateTime": req.RankingDateTime, "rankingPosition": req.RankingPosition}
		if keyInput.StageID != "" {
			filter["stageId"], filter["stageScope"] = keyInput.StageID, keyInput.StageScope
		} else {
			filter["eventId"], filter["eventScope"] = keyInput.EventID, keyInput.EventScope
		}
		if keyInput.TeamID != "" {
			filter["teamId"], filter["teamScope"] = keyInput.TeamID, keyInput.TeamScope
		} else {
			filter["sportsPersonId"], filter["sportsPersonScope"] = keyInput.SportsPersonID, keyInput.SportsPersonScope
		}
		return buildSpec{
			resourceType: string(entities.ResourceTypeRanking),
			collection:   entities.ResourceTypeRanking.Collection(),
			filter:       filter,
			externalKey:  key,
			run: func(ctx context.Context, store out.Store) (*materialised.Document, bool, error) {
				return pipeline.AssembleRanking(ctx, store, req.RankingLocusType, req.RankingLocusScope, req.RankingLocusID, req.RankingSubjType, req.RankingSubjScope, req.RankingSubjID, req.RankingDateTime, req.RankingPosition)
			},
		}, nil

	default:
		return buildSpec{}, common.NewErrInvalidInput("build: request names no entity")
	}
}

func staffOrgFilterFields(role keycodec.StaffRole) (idField, scopeField string) {
	switch role {
	case keycodec.StaffRoleTeam:
		return "teamId", "teamScope"
	case keycodec.StaffRoleClub:
		return "clubId", "clubScope"
	default:
		return "nationId", "nationScope"
	}
}

// BuildAggregationUseCase implements in.BuildAPI, the processor of §4.4.
type BuildAggregationUseCase struct {
	Store out.Store
}

func NewBuildAggregationUseCase(store out.Store) *BuildAggregationUseCase {
	return &BuildAggregationUseCase{Store: store}
}

var _ in.BuildAPI = (*BuildAggregationUseCase)(nil)

// Build runs the processor's seven steps (§4.4). It returns the new
// snapshot on success; a reconciler partial failure is still returned
// alongside the document (wrapped in common.ErrReconcilerPartial) per §7's
// "logged, operation count returned / 200 with warning field" handling.
func (uc *BuildAggregationUseCase) Build(ctx context.Context, req in.BuildRequest) (*materialised.Document, error) {
	spec, err := resolveBuildSpec(req)
	if err != nil {
		return nil, err // Invalid
	}

	count, err := uc.Store.CountMatching(ctx, spec.collection, spec.filter)
	if err != nil {
		return nil, common.NewErrStoreUnavailable(err)
	}
	if count == 0 {
		return nil, common.NewErrNotFound(spec.resourceType, "externalKey", spec.externalKey) // Missing
	}

	old, _, err := uc.Store.FindMaterialised(ctx, spec.resourceType, spec.externalKey)
	if err != nil {
		return nil, common.NewErrStoreUnavailable(err)
	}

	newDoc, found, err := spec.run(ctx, uc.Store)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.NewErrNotFound(spec.resourceType, "externalKey", spec.externalKey)
	}
	if newDoc == nil {
		return nil, common.NewErrPostUpsertMissing(spec.resourceType, spec.externalKey)
	}
	// Built.

	oldExternalKey := spec.externalKey
	if old != nil {
		oldExternalKey = old.ExternalKey
	}
	sourceRef := materialised.Ref{ResourceType: spec.resourceType, GamedayID: newDoc.GamedayID, ExternalKey: newDoc.ExternalKey}

	rec := NewReconcileReferencesUseCase(uc.Store)
	applied, failed, err := rec.Reconcile(ctx, sourceRef, oldExternalKey, old, newDoc)
	if err != nil {
		return newDoc, common.NewErrStoreUnavailable(err)
	}
	if failed > 0 {
		return newDoc, common.NewErrReconcilerPartial(applied, failed) // Reconciled, with a partial-failure warning attached
	}

	return newDoc, nil // Reconciled
}
