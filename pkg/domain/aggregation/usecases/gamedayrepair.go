package usecases

import (
	"context"

	"github.com/google/uuid"

	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// repairGamedayIDs implements §4.5's post-upsert gamedayId repair: every Add
// op may have just upserted a peer that did not previously exist, in which
// case its gamedayId is the zero value. Decode the peer's composite key via
// the type→fields table (§6) and patch it from its source collection.
func (uc *ReconcileReferencesUseCase) repairGamedayIDs(ctx context.Context, ops []materialised.BulkOp) error {
	repaired := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if op.Kind != materialised.BulkOpAdd {
			continue
		}
		dedupKey := op.PeerResourceType + "\x00" + op.PeerExternalKey
		if _, done := repaired[dedupKey]; done {
			continue
		}
		repaired[dedupKey] = struct{}{}

		if err := uc.repairOne(ctx, op.PeerResourceType, op.PeerExternalKey); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ReconcileReferencesUseCase) repairOne(ctx context.Context, resourceType, externalKey string) error {
	peer, found, err := uc.Store.FindMaterialised(ctx, resourceType, externalKey)
	if err != nil || !found || peer.GamedayID != uuid.Nil {
		return err
	}

	gamedayID, found, err := lookupGamedayID(ctx, uc.Store, resourceType, externalKey)
	if err != nil || !found {
		return err
	}

	peer.GamedayID = gamedayID
	return uc.Store.UpsertMaterialised(ctx, peer)
}

type gamedayHolder struct {
	GamedayID uuid.UUID `bson:"gamedayId"`
}

func lookupGamedayID(ctx context.Context, store sourceReader, resourceType, externalKey string) (uuid.UUID, bool, error) {
	rt := entities.ResourceType(resourceType)

	switch rt {
	case entities.ResourceTypeStaff:
		spID, spScope, role, targetID, targetScope, err := keycodec.DecodeStaffKey(externalKey)
		if err != nil {
			return uuid.Nil, false, err
		}
		idField, scopeField := staffOrgFilterFields(role)
		filter := map[string]any{
			"sportsPersonId": spID, "sportsPersonScope": spScope,
			"role": string(role), idField: targetID, scopeField: targetScope,
		}
		var h gamedayHolder
		found, err := store.FindOne(ctx, entities.ResourceTypeStaff.Collection(), filter, &h)
		return h.GamedayID, found, err

	case entities.ResourceTypeKeyMoment:
		dateTime, eventScope, eventID, momentType, subType, err := keycodec.DecodeKeyMomentKey(externalKey)
		if err != nil {
			return uuid.Nil, false, err
		}
		filter := map[string]any{"eventId": eventID, "eventScope": eventScope, "type": momentType, "subType": subType, "dateTime": dateTime}
		var h gamedayHolder
		found, err := store.FindOne(ctx, entities.ResourceTypeKeyMoment.Collection(), filter, &h)
		return h.GamedayID, found, err

	case entities.ResourceTypeRanking:
		in, err := keycodec.DecodeRankingKey(externalKey)
		if err != nil {
			return uuid.Nil, false, err
		}
		filter := map[string]any{"dateTime": in.DateTime, "rankingPosition": in.Position}
		if in.StageID != "" {
			filter["stageId"], filter["stageScope"] = in.StageID, in.StageScope
		} else {
			filter["eventId"], filter["eventScope"] = in.EventID, in.EventScope
		}
		if in.TeamID != "" {
			filter["teamId"], filter["teamScope"] = in.TeamID, in.TeamScope
		} else {
			filter["sportsPersonId"], filter["sportsPersonScope"] = in.SportsPersonID, in.SportsPersonScope
		}
		var h gamedayHolder
		found, err := store.FindOne(ctx, entities.ResourceTypeRanking.Collection(), filter, &h)
		return h.GamedayID, found, err

	default:
		id, scope, err := keycodec.DecodeEntityKey(externalKey)
		if err != nil {
			return uuid.Nil, false, err
		}
		collection := rt.Collection()
		if collection == "" {
			return uuid.Nil, false, nil
		}
		filter := map[string]any{"externalIdScope": scope, "externalId": id}
		var h gamedayHolder
		found, err := store.FindOne(ctx, collection, filter, &h)
		return h.GamedayID, found, err
	}
}

// sourceReader is the slice of out.Store the repair lookup needs; declared
// locally so this file depends only on what it calls.
type sourceReader interface {
	FindOne(ctx context.Context, collection string, filter map[string]any, out any) (bool, error)
}
