// Package facets implements the relationship resolvers of §4.2: one
// resolver per (entity, edge), each producing {ids, keys} for a single
// neighbour type of a single source entity. Facets are evaluated in-process
// against the injected Store reader rather than pushed down as a store-side
// pipeline (§9 design note, "a strong implementation may ... pull source
// documents and resolve facets in-process via batched lookups"); the write
// side (C3) still assembles and upserts a single document.
package facets

import (
	"context"

	"github.com/google/uuid"

	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// Result is the facet's output shape: a deduplicated id set plus the
// externalKey -> gamedayId mapping that produced it. A key with a zero
// (uuid.Nil) value is a stale reference: the source names a neighbour that
// is not (yet) present in its source collection (§8 testable property:
// |keys| >= |ids| is permitted).
type Result struct {
	IDs  []uuid.UUID
	Keys map[string]uuid.UUID
}

// Resolver is one facet bound to the source document it projects.
type Resolver func(ctx context.Context, store out.Store) (Result, error)

var (
	collCompetition   = entities.ResourceTypeCompetition.Collection()
	collStage         = entities.ResourceTypeStage.Collection()
	collEvent         = entities.ResourceTypeEvent.Collection()
	collTeam          = entities.ResourceTypeTeam.Collection()
	collClub          = entities.ResourceTypeClub.Collection()
	collVenue         = entities.ResourceTypeVenue.Collection()
	collSportsPerson  = entities.ResourceTypeSportsPerson.Collection()
	collStaff         = entities.ResourceTypeStaff.Collection()
	collKeyMoment     = entities.ResourceTypeKeyMoment.Collection()
	collRanking       = entities.ResourceTypeRanking.Collection()
	collSgo           = entities.ResourceTypeSgo.Collection()
	collNation        = entities.ResourceTypeNation.Collection()
)

// identityHolder decodes just enough of a source document to resolve it to
// a gamedayId and re-encode its external key.
type identityHolder struct {
	GamedayID       uuid.UUID `bson:"gamedayId"`
	ExternalID      string    `bson:"externalId"`
	ExternalIDScope string    `bson:"externalIdScope"`
}

type pair struct{ ID, Scope string }

func dedupPairs(in []pair) []pair {
	seen := make(map[string]struct{}, len(in))
	out := make([]pair, 0, len(in))
	for _, p := range in {
		if p.ID == "" || p.Scope == "" {
			continue
		}
		k := p.ID + "\x00" + p.Scope
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

func elemMatch(field string, cond map[string]any) map[string]any {
	return map[string]any{field: map[string]any{"$elemMatch": cond}}
}

// resolveOne implements the "direct reference" facet family (§4.2.1).
func resolveOne(ctx context.Context, store out.Store, collection, id, scope string) (Result, error) {
	key := keycodec.EncodeEntityKey(id, scope)

	var holder identityHolder
	found, err := store.FindOne(ctx, collection, map[string]any{"externalIdScope": scope, "externalId": id}, &holder)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Keys: map[string]uuid.UUID{key: uuid.Nil}}, nil
	}
	return Result{IDs: []uuid.UUID{holder.GamedayID}, Keys: map[string]uuid.UUID{key: holder.GamedayID}}, nil
}

// direct wraps resolveOne as a Resolver, or a no-op when the source carries
// no reference at all (empty id/scope).
func direct(collection, id, scope string) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		if id == "" || scope == "" {
			return Result{}, nil
		}
		return resolveOne(ctx, store, collection, id, scope)
	}
}

// resolveMany implements the "inverse reference" facet family (§4.2.2):
// filter the neighbour collection and resolve every match to its external
// key and gamedayId.
func resolveMany(ctx context.Context, store out.Store, collection string, filter map[string]any) (Result, error) {
	var docs []identityHolder
	if err := store.FindMany(ctx, collection, filter, &docs); err != nil {
		return Result{}, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	keys := make(map[string]uuid.UUID, len(docs))
	for _, d := range docs {
		k := keycodec.EncodeEntityKey(d.ExternalID, d.ExternalIDScope)
		keys[k] = d.GamedayID
		ids = append(ids, d.GamedayID)
	}
	return Result{IDs: ids, Keys: keys}, nil
}

func many(collection string, filter map[string]any) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		return resolveMany(ctx, store, collection, filter)
	}
}

// resolveKeyedPairs implements the "embedded-array expansion" facet family
// (§4.2.3): the caller has already reshaped each surviving array entry to
// {id, scope} and deduplicated by key; this joins the pairs to the
// referenced collection in a single filter.
func resolveKeyedPairs(ctx context.Context, store out.Store, collection string, pairs []pair) (Result, error) {
	if len(pairs) == 0 {
		return Result{}, nil
	}
	or := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		or = append(or, map[string]any{"externalIdScope": p.Scope, "externalId": p.ID})
	}
	return resolveMany(ctx, store, collection, map[string]any{"$or": or})
}

func keyed(collection string, pairs []pair) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		return resolveKeyedPairs(ctx, store, collection, pairs)
	}
}

func sgoMembershipPairs(memberships []entities.SgoMembership) []pair {
	pairs := make([]pair, 0, len(memberships))
	for _, m := range memberships {
		pairs = append(pairs, pair{m.SgoID, m.SgoScope})
	}
	return dedupPairs(pairs)
}

// participantPairs keeps only the participants of the requested
// classification, implementing the "both team and sports-person classifies
// as sports-person" rule (§4.2) via Participant.Classify.
func participantPairs(participants []entities.Participant, kind entities.ParticipantKind) []pair {
	pairs := make([]pair, 0, len(participants))
	for _, p := range participants {
		switch p.Classify() {
		case entities.ParticipantTeam:
			if kind == entities.ParticipantTeam {
				pairs = append(pairs, pair{p.TeamID, p.TeamScope})
			}
		case entities.ParticipantSportsPerson:
			if kind == entities.ParticipantSportsPerson {
				pairs = append(pairs, pair{p.SportsPersonID, p.SportsPersonScope})
			}
		}
	}
	return dedupPairs(pairs)
}

func memberPairs(members []entities.MemberRef) []pair {
	pairs := make([]pair, 0, len(members))
	for _, m := range members {
		pairs = append(pairs, pair{m.SportsPersonID, m.SportsPersonScope})
	}
	return dedupPairs(pairs)
}

// --- staff, keyMoment and ranking carry compound keys and need bespoke
// resolvers: their "external key" is not a plain (id, scope) pair (§4.1). ---

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

// resolveStaffByOrg resolves a team/club/nation's "staff" neighbour: every
// staff document whose target organisation is this entity.
func resolveStaffByOrg(role keycodec.StaffRole, orgID, orgScope string) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		if orgID == "" || orgScope == "" {
			return Result{}, nil
		}
		idField, scopeField := staffOrgFilterFields(role)
		var docs []entities.Staff
		filter := map[string]any{"role": string(role), idField: orgID, scopeField: orgScope}
		if err := store.FindMany(ctx, collStaff, filter, &docs); err != nil {
			return Result{}, err
		}
		return keyStaffDocs(docs)
	}
}

// resolveStaffBySportsPerson resolves a sportsPerson's "staff" neighbour:
// every role the person serves across any organisation.
func resolveStaffBySportsPerson(spID, spScope string) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		if spID == "" || spScope == "" {
			return Result{}, nil
		}
		var docs []entities.Staff
		filter := map[string]any{"sportsPersonId": spID, "sportsPersonScope": spScope}
		if err := store.FindMany(ctx, collStaff, filter, &docs); err != nil {
			return Result{}, err
		}
		return keyStaffDocs(docs)
	}
}

func keyStaffDocs(docs []entities.Staff) (Result, error) {
	ids := make([]uuid.UUID, 0, len(docs))
	keys := make(map[string]uuid.UUID, len(docs))
	for _, d := range docs {
		targetID, targetScope, role := d.Target()
		if role == "" {
			continue
		}
		key, err := keycodec.EncodeStaffKey(d.SportsPersonID, d.SportsPersonScope, keycodec.StaffRole(role), targetID, targetScope)
		if err != nil {
			continue
		}
		keys[key] = d.GamedayID
		ids = append(ids, d.GamedayID)
	}
	return Result{IDs: ids, Keys: keys}, nil
}

// resolveKeyMoments resolves an event's "keyMoment" neighbour.
func resolveKeyMoments(eventScope, eventID string) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		if eventScope == "" || eventID == "" {
			return Result{}, nil
		}
		var docs []entities.KeyMoment
		filter := map[string]any{"eventId": eventID, "eventScope": eventScope}
		if err := store.FindMany(ctx, collKeyMoment, filter, &docs); err != nil {
			return Result{}, err
		}
		ids := make([]uuid.UUID, 0, len(docs))
		keys := make(map[string]uuid.UUID, len(docs))
		for _, d := range docs {
			key := keycodec.EncodeKeyMomentKey(d.DateTime, d.EventScope, d.EventID, d.Type, d.SubType)
			keys[key] = d.GamedayID
			ids = append(ids, d.GamedayID)
		}
		return Result{IDs: ids, Keys: keys}, nil
	}
}

// resolveRankings resolves a "ranking" neighbour for whichever stage/event
// and team/sportsPerson filter the caller supplies. Rankings missing both
// context pairs are discarded by EncodeRankingKey returning an error
// (§4.2 "rankings missing both context pairs are discarded").
func resolveRankings(filter map[string]any) Resolver {
	return func(ctx context.Context, store out.Store) (Result, error) {
		var docs []entities.Ranking
		if err := store.FindMany(ctx, collRanking, filter, &docs); err != nil {
			return Result{}, err
		}
		ids := make([]uuid.UUID, 0, len(docs))
		keys := make(map[string]uuid.UUID, len(docs))
		for _, d := range docs {
			key, err := keycodec.EncodeRankingKey(keycodec.RankingKeyInput{
				StageID: d.StageID, StageScope: d.StageScope,
				EventID: d.EventID, EventScope: d.EventScope,
				TeamID: d.TeamID, TeamScope: d.TeamScope,
				SportsPersonID: d.SportsPersonID, SportsPersonScope: d.SportsPersonScope,
				DateTime: d.DateTime, Position: d.RankingPosition,
			})
			if err != nil {
				continue
			}
			keys[key] = d.GamedayID
			ids = append(ids, d.GamedayID)
		}
		return Result{IDs: ids, Keys: keys}, nil
	}
}

// --- traversal facets: chain resolvers through an intermediate collection ---

func competitionEvents(ctx context.Context, store out.Store, c entities.Competition) ([]entities.Event, error) {
	var events []entities.Event
	filter := map[string]any{"competitionId": c.ExternalID, "competitionScope": c.ExternalIDScope}
	if err := store.FindMany(ctx, collEvent, filter, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func stageEvents(ctx context.Context, store out.Store, s entities.Stage) ([]entities.Event, error) {
	var events []entities.Event
	filter := map[string]any{"stageId": s.ExternalID, "stageScope": s.ExternalIDScope}
	if err := store.FindMany(ctx, collEvent, filter, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func eventParticipantPairs(events []entities.Event, kind entities.ParticipantKind) []pair {
	var all []entities.Participant
	for _, e := range events {
		all = append(all, e.Participants...)
	}
	return participantPairs(all, kind)
}

func eventVenuePairs(events []entities.Event) []pair {
	pairs := make([]pair, 0, len(events))
	for _, e := range events {
		pairs = append(pairs, pair{e.VenueID, e.VenueScope})
	}
	return dedupPairs(pairs)
}

// CompetitionFacets implements the representative facet table's competition
// row: sgos, stages, events, teams, sportsPersons, venues (§4.3).
func CompetitionFacets(c entities.Competition) map[string]Resolver {
	return map[string]Resolver{
		"sgo":   keyed(collSgo, sgoMembershipPairs(c.SgoMemberships)),
		"stage": many(collStage, map[string]any{"competitionId": c.ExternalID, "competitionScope": c.ExternalIDScope}),
		"event": many(collEvent, map[string]any{"competitionId": c.ExternalID, "competitionScope": c.ExternalIDScope}),
		"team": func(ctx context.Context, store out.Store) (Result, error) {
			events, err := competitionEvents(ctx, store, c)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collTeam, eventParticipantPairs(events, entities.ParticipantTeam))
		},
		"sportsperson": func(ctx context.Context, store out.Store) (Result, error) {
			events, err := competitionEvents(ctx, store, c)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collSportsPerson, eventParticipantPairs(events, entities.ParticipantSportsPerson))
		},
		"venue": func(ctx context.Context, store out.Store) (Result, error) {
			ownVenue := dedupPairs([]pair{{c.VenueID, c.VenueScope}})
			events, err := competitionEvents(ctx, store, c)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collVenue, dedupPairs(append(ownVenue, eventVenuePairs(events)...)))
		},
	}
}

// StageFacets implements: competition, events, venues, teams, sportsPersons.
func StageFacets(s entities.Stage) map[string]Resolver {
	return map[string]Resolver{
		"competition": direct(collCompetition, s.CompetitionID, s.CompetitionScope),
		"event":       many(collEvent, map[string]any{"stageId": s.ExternalID, "stageScope": s.ExternalIDScope}),
		"team": func(ctx context.Context, store out.Store) (Result, error) {
			events, err := stageEvents(ctx, store, s)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collTeam, eventParticipantPairs(events, entities.ParticipantTeam))
		},
		"sportsperson": func(ctx context.Context, store out.Store) (Result, error) {
			events, err := stageEvents(ctx, store, s)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collSportsPerson, eventParticipantPairs(events, entities.ParticipantSportsPerson))
		},
		"venue": func(ctx context.Context, store out.Store) (Result, error) {
			ownVenue := dedupPairs([]pair{{s.VenueID, s.VenueScope}})
			events, err := stageEvents(ctx, store, s)
			if err != nil {
				return Result{}, err
			}
			return resolveKeyedPairs(ctx, store, collVenue, dedupPairs(append(ownVenue, eventVenuePairs(events)...)))
		},
	}
}

// EventFacets implements: stage, competition, sgos, venues, teams,
// sportsPersons, keyMoments, rankings.
func EventFacets(e entities.Event) map[string]Resolver {
	return map[string]Resolver{
		"stage":        direct(collStage, e.StageID, e.StageScope),
		"competition":  direct(collCompetition, e.CompetitionID, e.CompetitionScope),
		"sgo":          keyed(collSgo, sgoMembershipPairs(e.SgoMemberships)),
		"venue":        direct(collVenue, e.VenueID, e.VenueScope),
		"team":         keyed(collTeam, participantPairs(e.Participants, entities.ParticipantTeam)),
		"sportsperson": keyed(collSportsPerson, participantPairs(e.Participants, entities.ParticipantSportsPerson)),
		"keymoment":    resolveKeyMoments(e.ExternalIDScope, e.ExternalID),
		"ranking":      resolveRankings(map[string]any{"eventId": e.ExternalID, "eventScope": e.ExternalIDScope}),
	}
}

// TeamFacets implements: clubs, nations, venues, events, sportsPersons
// (members), staff, sgos, rankings.
func TeamFacets(t entities.Team) map[string]Resolver {
	return map[string]Resolver{
		"club":         direct(collClub, t.ClubID, t.ClubScope),
		"nation":       direct(collNation, t.NationID, t.NationScope),
		"venue":        direct(collVenue, t.VenueID, t.VenueScope),
		"event":        many(collEvent, elemMatch("participants", map[string]any{"teamId": t.ExternalID, "teamScope": t.ExternalIDScope})),
		"sportsperson": keyed(collSportsPerson, memberPairs(t.Members)),
		"staff":        resolveStaffByOrg(keycodec.StaffRoleTeam, t.ExternalID, t.ExternalIDScope),
		"sgo":          keyed(collSgo, sgoMembershipPairs(t.SgoMemberships)),
		"ranking":      resolveRankings(map[string]any{"teamId": t.ExternalID, "teamScope": t.ExternalIDScope}),
	}
}

// ClubFacets implements: teams, venues, sgos, staff.
func ClubFacets(c entities.Club) map[string]Resolver {
	return map[string]Resolver{
		"team":  many(collTeam, map[string]any{"clubId": c.ExternalID, "clubScope": c.ExternalIDScope}),
		"venue": direct(collVenue, c.VenueID, c.VenueScope),
		"sgo":   keyed(collSgo, sgoMembershipPairs(c.SgoMemberships)),
		"staff": resolveStaffByOrg(keycodec.StaffRoleClub, c.ExternalID, c.ExternalIDScope),
	}
}

// SportsPersonFacets implements: clubs, teams, events, staff, rankings.
func SportsPersonFacets(sp entities.SportsPerson) map[string]Resolver {
	return map[string]Resolver{
		"club": direct(collClub, sp.ClubID, sp.ClubScope),
		"team": many(collTeam, elemMatch("members", map[string]any{"sportsPersonId": sp.ExternalID, "sportsPersonScope": sp.ExternalIDScope})),
		"event": many(collEvent, elemMatch("participants", map[string]any{"sportsPersonId": sp.ExternalID, "sportsPersonScope": sp.ExternalIDScope})),
		"staff":   resolveStaffBySportsPerson(sp.ExternalID, sp.ExternalIDScope),
		"ranking": resolveRankings(map[string]any{"sportsPersonId": sp.ExternalID, "sportsPersonScope": sp.ExternalIDScope}),
	}
}

// SgoFacets implements: competitions (inbound), teams, clubs, venues,
// nations, sgos (out + in).
func SgoFacets(s entities.Sgo) map[string]Resolver {
	return map[string]Resolver{
		"competition": many(collCompetition, elemMatch("sgoMemberships", map[string]any{"sgoId": s.ExternalID, "sgoScope": s.ExternalIDScope})),
		"team":        many(collTeam, elemMatch("sgoMemberships", map[string]any{"sgoId": s.ExternalID, "sgoScope": s.ExternalIDScope})),
		"club":        many(collClub, elemMatch("sgoMemberships", map[string]any{"sgoId": s.ExternalID, "sgoScope": s.ExternalIDScope})),
		"nation":      direct(collNation, s.NationID, s.NationScope),
		"venue": func(ctx context.Context, store out.Store) (Result, error) {
			teams, err := resolveMany(ctx, store, collTeam, elemMatch("sgoMemberships", map[string]any{"sgoId": s.ExternalID, "sgoScope": s.ExternalIDScope}))
			if err != nil {
				return Result{}, err
			}
			clubs, err := resolveMany(ctx, store, collClub, elemMatch("sgoMemberships", map[string]any{"sgoId": s.ExternalID, "sgoScope": s.ExternalIDScope}))
			if err != nil {
				return Result{}, err
			}
			return venuesOfTeamsAndClubs(ctx, store, teams, clubs)
		},
		"sgo": func(ctx context.Context, store out.Store) (Result, error) {
			parent, err := directIfSet(ctx, store, collSgo, s.ParentSgoID, s.ParentSgoScope)
			if err != nil {
				return Result{}, err
			}
			children, err := resolveMany(ctx, store, collSgo, map[string]any{"parentSgoId": s.ExternalID, "parentSgoScope": s.ExternalIDScope})
			if err != nil {
				return Result{}, err
			}
			return mergeResults(parent, children), nil
		},
	}
}

// NationFacets implements: sgos, teams, venues.
func NationFacets(n entities.Nation) map[string]Resolver {
	return map[string]Resolver{
		"sgo":  many(collSgo, map[string]any{"nationId": n.ExternalID, "nationScope": n.ExternalIDScope}),
		"team": many(collTeam, map[string]any{"nationId": n.ExternalID, "nationScope": n.ExternalIDScope}),
		"venue": func(ctx context.Context, store out.Store) (Result, error) {
			teams, err := resolveMany(ctx, store, collTeam, map[string]any{"nationId": n.ExternalID, "nationScope": n.ExternalIDScope})
			if err != nil {
				return Result{}, err
			}
			return venuesOfTeamsAndClubs(ctx, store, teams, Result{})
		},
	}
}

// StaffFacets implements: team|club|nation (exactly one) and sportsPerson.
func StaffFacets(s entities.Staff) map[string]Resolver {
	targetID, targetScope, role := s.Target()
	facets := map[string]Resolver{
		"sportsperson": direct(collSportsPerson, s.SportsPersonID, s.SportsPersonScope),
	}
	switch role {
	case "team":
		facets["team"] = direct(collTeam, targetID, targetScope)
	case "club":
		facets["club"] = direct(collClub, targetID, targetScope)
	case "nation":
		facets["nation"] = direct(collNation, targetID, targetScope)
	}
	return facets
}

// --- small composition helpers shared by sgo/nation facets ---

func directIfSet(ctx context.Context, store out.Store, collection, id, scope string) (Result, error) {
	if id == "" || scope == "" {
		return Result{}, nil
	}
	return resolveOne(ctx, store, collection, id, scope)
}

// venuesOfTeamsAndClubs unions the VenueID/VenueScope of the already-resolved
// team and club documents. Teams/clubs were already resolved via
// resolveMany, so they are re-fetched here by their resolved gamedayIds
// ($in) to read the VenueID/VenueScope fields, which identityHolder (used
// inside resolveMany) does not carry.
func venuesOfTeamsAndClubs(ctx context.Context, store out.Store, teams, clubs Result) (Result, error) {
	pairs := make([]pair, 0, len(teams.IDs)+len(clubs.IDs))
	if len(teams.IDs) > 0 {
		var docs []entities.Team
		if err := store.FindMany(ctx, collTeam, map[string]any{"gamedayId": map[string]any{"$in": teams.IDs}}, &docs); err != nil {
			return Result{}, err
		}
		for _, t := range docs {
			pairs = append(pairs, pair{t.VenueID, t.VenueScope})
		}
	}
	if len(clubs.IDs) > 0 {
		var docs []entities.Club
		if err := store.FindMany(ctx, collClub, map[string]any{"gamedayId": map[string]any{"$in": clubs.IDs}}, &docs); err != nil {
			return Result{}, err
		}
		for _, c := range docs {
			pairs = append(pairs, pair{c.VenueID, c.VenueScope})
		}
	}
	return resolveKeyedPairs(ctx, store, collVenue, dedupPairs(pairs))
}

func mergeResults(a, b Result) Result {
	ids := append(append([]uuid.UUID{}, a.IDs...), b.IDs...)
	keys := make(map[string]uuid.UUID, len(a.Keys)+len(b.Keys))
	for k, v := range a.Keys {
		keys[k] = v
	}
	for k, v := range b.Keys {
		keys[k] = v
	}
	return Result{IDs: dedupIDs(ids), Keys: keys}
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
