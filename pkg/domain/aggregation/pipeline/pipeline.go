// Package pipeline implements the aggregation pipeline assembler (§4.3,
// C3): match one source document, run its facet table, project a single
// materialised document, and upsert it into the sink.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gameday/aggregation-api/pkg/domain/aggregation/facets"
	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// meta is the {gamedayId, externalKey, resourceType, name} facet of §4.3
// step 3, computed directly from the matched source document rather than
// through the generic Resolver closures (it never depends on a peer
// collection).
type meta struct {
	GamedayID       uuid.UUID
	ExternalID      string
	ExternalIDScope string
	ExternalKey     string
	Name            string
}

func metaFrom(identity entities.Identity, name entities.LocalisedName) meta {
	return meta{
		GamedayID:       identity.GamedayID,
		ExternalID:      identity.ExternalID,
		ExternalIDScope: identity.ExternalIDScope,
		ExternalKey:     keycodec.EncodeEntityKey(identity.ExternalID, identity.ExternalIDScope),
		Name:            name.Resolve(),
	}
}

// AssembleEntity runs the pipeline for every entity type addressed by a
// plain (scope, id) pair (all but staff, keyMoment and ranking).
func AssembleEntity(ctx context.Context, store out.Store, rt entities.ResourceType, scope, id string) (*materialised.Document, bool, error) {
	collection := rt.Collection()
	filter := map[string]any{"externalIdScope": scope, "externalId": id}

	var (
		m         meta
		resolvers map[string]facets.Resolver
		found     bool
		err       error
	)

	switch rt {
	case entities.ResourceTypeCompetition:
		var doc entities.Competition
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.CompetitionFacets(doc)
		}
	case entities.ResourceTypeStage:
		var doc entities.Stage
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.StageFacets(doc)
		}
	case entities.ResourceTypeEvent:
		var doc entities.Event
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.EventFacets(doc)
		}
	case entities.ResourceTypeTeam:
		var doc entities.Team
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.TeamFacets(doc)
		}
	case entities.ResourceTypeClub:
		var doc entities.Club
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.ClubFacets(doc)
		}
	case entities.ResourceTypeSportsPerson:
		var doc entities.SportsPerson
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.SportsPersonFacets(doc)
		}
	case entities.ResourceTypeSgo:
		var doc entities.Sgo
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.SgoFacets(doc)
		}
	case entities.ResourceTypeNation:
		var doc entities.Nation
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = facets.NationFacets(doc)
		}
	case entities.ResourceTypeVenue:
		var doc entities.Venue
		if found, err = store.FindOne(ctx, collection, filter, &doc); found && err == nil {
			m = metaFrom(doc.Identity, doc.LocalisedName)
			resolvers = map[string]facets.Resolver{}
		}
	default:
		return nil, false, fmt.Errorf("pipeline: unsupported entity type %q", rt)
	}

	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	doc, err := assemble(ctx, store, string(rt), m, resolvers)
	return doc, true, err
}

// AssembleStaff runs the pipeline for the staff build route: the matched
// document's identity is its (sportsPerson, role, org) triple, not an
// (externalIdScope, externalId) pair (§3).
func AssembleStaff(ctx context.Context, store out.Store, spScope, spID string, role keycodec.StaffRole, orgScope, orgID string) (*materialised.Document, bool, error) {
	idField, scopeField := staffOrgFields(role)
	filter := map[string]any{
		"sportsPersonId":    spID,
		"sportsPersonScope": spScope,
		"role":              string(role),
		idField:             orgID,
		scopeField:          orgScope,
	}

	var doc entities.Staff
	found, err := store.FindOne(ctx, entities.ResourceTypeStaff.Collection(), filter, &doc)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	key, err := keycodec.EncodeStaffKey(spID, spScope, role, orgID, orgScope)
	if err != nil {
		return nil, false, err
	}

	m := meta{GamedayID: doc.GamedayID, ExternalID: doc.ExternalID, ExternalIDScope: doc.ExternalIDScope, ExternalKey: key}
	built, err := assemble(ctx, store, string(entities.ResourceTypeStaff), m, facets.StaffFacets(doc))
	return built, true, err
}

func staffOrgFields(role keycodec.StaffRole) (idField, scopeField string) {
	switch role {
	case keycodec.StaffRoleTeam:
		return "teamId", "teamScope"
	case keycodec.StaffRoleClub:
		return "clubId", "clubScope"
	default:
		return "nationId", "nationScope"
	}
}

// AssembleKeyMoment runs the pipeline for the key-moment build route. Key
// moments carry no outward neighbour projections of their own (§4.3's
// representative table lists them only as an event's neighbour).
func AssembleKeyMoment(ctx context.Context, store out.Store, eventScope, eventID, momentType, subType, dateTime string) (*materialised.Document, bool, error) {
	filter := map[string]any{
		"eventId":    eventID,
		"eventScope": eventScope,
		"type":       momentType,
		"subType":    subType,
		"dateTime":   dateTime,
	}

	var doc entities.KeyMoment
	found, err := store.FindOne(ctx, entities.ResourceTypeKeyMoment.Collection(), filter, &doc)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	key := keycodec.EncodeKeyMomentKey(dateTime, eventScope, eventID, momentType, subType)
	m := meta{GamedayID: doc.GamedayID, ExternalKey: key}
	built, err := assemble(ctx, store, string(entities.ResourceTypeKeyMoment), m, nil)
	return built, true, err
}

// AssembleRanking runs the pipeline for the rankings build route.
func AssembleRanking(ctx context.Context, store out.Store, locusType, locusScope, locusID, subjType, subjScope, subjID, dateTime string, position int) (*materialised.Document, bool, error) {
	filter := map[string]any{"dateTime": dateTime, "rankingPosition": position}
	switch strings.ToLower(locusType) {
	case "stage":
		filter["stageId"], filter["stageScope"] = locusID, locusScope
	case "event":
		filter["eventId"], filter["eventScope"] = locusID, locusScope
	default:
		return nil, false, fmt.Errorf("pipeline: unknown ranking locus type %q", locusType)
	}
	switch strings.ToLower(subjType) {
	case "team":
		filter["teamId"], filter["teamScope"] = subjID, subjScope
	case "sportsperson":
		filter["sportsPersonId"], filter["sportsPersonScope"] = subjID, subjScope
	default:
		return nil, false, fmt.Errorf("pipeline: unknown ranking subject type %q", subjType)
	}

	var doc entities.Ranking
	found, err := store.FindOne(ctx, entities.ResourceTypeRanking.Collection(), filter, &doc)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	key, err := keycodec.EncodeRankingKey(keycodec.RankingKeyInput{
		StageID: doc.StageID, StageScope: doc.StageScope,
		EventID: doc.EventID, EventScope: doc.EventScope,
		TeamID: doc.TeamID, TeamScope: doc.TeamScope,
		SportsPersonID: doc.SportsPersonID, SportsPersonScope: doc.SportsPersonScope,
		DateTime: doc.DateTime, Position: doc.RankingPosition,
	})
	if err != nil {
		return nil, false, err
	}

	m := meta{GamedayID: doc.GamedayID, ExternalKey: key}
	result, err := assemble(ctx, store, string(entities.ResourceTypeRanking), m, nil)
	return result, true, err
}

// assemble executes every facet in resolvers in parallel (§4.3 step 2),
// projects the result document (step 3-4) and upserts it (step 5).
func assemble(ctx context.Context, store out.Store, resourceType string, m meta, resolvers map[string]facets.Resolver) (*materialised.Document, error) {
	tags := make([]string, 0, len(resolvers))
	for tag := range resolvers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	type outcome struct {
		tag string
		res facets.Result
	}
	outcomes := make([]outcome, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range tags {
		i, tag, resolver := i, tag, resolvers[tag]
		g.Go(func() error {
			res, err := resolver(gctx, store)
			if err != nil {
				return fmt.Errorf("facet %s: %w", tag, err)
			}
			outcomes[i] = outcome{tag: tag, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc := &materialised.Document{
		ResourceType:    string(entities.Normalise(resourceType)),
		ExternalKey:     m.ExternalKey,
		GamedayID:       m.GamedayID,
		ExternalID:      m.ExternalID,
		ExternalIDScope: m.ExternalIDScope,
		Name:            m.Name,
		LastUpdated:     time.Now().UTC(),
	}
	for _, o := range outcomes {
		doc.SetNeighbour(o.tag, o.res.IDs, o.res.Keys)
	}

	if err := store.UpsertMaterialised(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
