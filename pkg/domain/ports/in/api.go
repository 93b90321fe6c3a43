// Package in declares the operations the HTTP adapter drives (§4.8, C8).
package in

import (
	"context"
	"time"

	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
)

// BuildRequest names the source document a build targets. Every build route
// in §6 resolves to one of these, whichever identifying fields it fills.
type BuildRequest struct {
	EntityType string // "" for the staff/keyMoment/ranking variants below

	Scope string
	ID    string

	// Staff variant.
	StaffSportsPersonScope string
	StaffSportsPersonID    string
	StaffRole              keycodec.StaffRole
	StaffOrgScope          string
	StaffOrgID             string

	// Key-moment variant.
	KMEventScope string
	KMEventID    string
	KMType       string
	KMSubType    string
	KMDateTime   string

	// Ranking variant.
	RankingLocusType  string // "stage" | "event"
	RankingLocusScope string
	RankingLocusID    string
	RankingSubjType   string // "team" | "sportsperson"
	RankingSubjScope  string
	RankingSubjID     string
	RankingDateTime   string
	RankingPosition   int
}

// BuildAPI runs the processor (C4) for one source entity.
type BuildAPI interface {
	Build(ctx context.Context, req BuildRequest) (*materialised.Document, error)
}

// QueryTarget names the traversal a list query should run.
type QueryTarget struct {
	Type  string
	Limit int
}

// SortBy selects the query executor's per-target result ordering (§4.7).
type SortBy int

const (
	SortByInsertion SortBy = iota
	SortByGamedayIDAsc
	SortByLastUpdatedDesc
)

type QueryRequest struct {
	RootType        string
	RootExternalKey string
	Targets         []QueryTarget
	// TotalMax caps the combined item count across every target, debited in
	// Targets order as each target's included set is computed (§8 scenario
	// S4). Zero or negative means no cross-target budget, only the per-type
	// Limit on each QueryTarget applies.
	TotalMax int
	SortBy   SortBy
	Deadline time.Time // zero value means no deadline
}

type QueryTargetResult struct {
	Items          []*materialised.Document
	OverflowType   string
	OverflowIDs    []string
}

type QueryResult struct {
	RootType        string
	RootExternalKey string
	Results         map[string]QueryTargetResult
}

// QueryAPI runs the traversal planner and executor (C6, C7) for one list
// request.
type QueryAPI interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
}

// SingleFetchAPI fetches a raw source document, used by §6's
// GET /{type}/{scope}/{id} route.
type SingleFetchAPI interface {
	FetchByExternalKey(ctx context.Context, entityType, scope, id string) (map[string]any, bool, error)
	FetchByGamedayID(ctx context.Context, entityType string, gamedayID string) (map[string]any, bool, error)
}
