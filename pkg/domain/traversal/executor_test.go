package traversal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	aggregation_out "github.com/gameday/aggregation-api/test/mocks/domain/ports/out"

	"github.com/gameday/aggregation-api/pkg/domain/traversal"
)

func TestExecutor_Query_RootNotFound(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	store.On("FindMaterialised", mock.Anything, "competition", "289175 @ fifa").
		Return(nil, false, nil)

	exec := traversal.NewExecutor(store)

	_, err := exec.Query(context.Background(), in.QueryRequest{
		RootType:        "competition",
		RootExternalKey: "289175 @ fifa",
		Targets:         []in.QueryTarget{{Type: "team"}},
	})

	require.Error(t, err)
}

func TestExecutor_Query_RootAsOwnTarget(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	gamedayID := uuid.New()
	root := &materialised.Document{ResourceType: "competition", GamedayID: gamedayID}

	store.On("FindMaterialised", mock.Anything, "competition", "289175 @ fifa").
		Return(root, true, nil)

	exec := traversal.NewExecutor(store)

	result, err := exec.Query(context.Background(), in.QueryRequest{
		RootType:        "competition",
		RootExternalKey: "289175 @ fifa",
		Targets:         []in.QueryTarget{{Type: "competition"}},
	})

	require.NoError(t, err)
	require.Contains(t, result.Results, "competition")
	require.Len(t, result.Results["competition"].Items, 1)
}

func TestExecutor_Query_SingleHopTarget(t *testing.T) {
	store := aggregation_out.NewMockStore(t)

	teamID := uuid.New()
	root := &materialised.Document{ResourceType: "competition"}
	root.SetNeighbour("team", []uuid.UUID{teamID}, map[string]uuid.UUID{"t1 @ fifa": teamID})

	teamDoc := &materialised.Document{ResourceType: "team", GamedayID: teamID}

	store.On("FindMaterialised", mock.Anything, "competition", "289175 @ fifa").
		Return(root, true, nil)
	store.On("FindManyMaterialisedByIDs", mock.Anything, "team", []uuid.UUID{teamID}).
		Return([]*materialised.Document{teamDoc}, nil)

	exec := traversal.NewExecutor(store)

	result, err := exec.Query(context.Background(), in.QueryRequest{
		RootType:        "competition",
		RootExternalKey: "289175 @ fifa",
		Targets:         []in.QueryTarget{{Type: "team"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Results["team"].Items, 1)
	require.Equal(t, teamID, result.Results["team"].Items[0].GamedayID)
}

func TestExecutor_Query_OverflowBeyondLimit(t *testing.T) {
	store := aggregation_out.NewMockStore(t)

	teamA, teamB := uuid.New(), uuid.New()
	root := &materialised.Document{ResourceType: "competition"}
	root.SetNeighbour("team", []uuid.UUID{teamA, teamB}, map[string]uuid.UUID{
		"a @ fifa": teamA,
		"b @ fifa": teamB,
	})

	store.On("FindMaterialised", mock.Anything, "competition", "x").
		Return(root, true, nil)
	store.On("FindManyMaterialisedByIDs", mock.Anything, "team", mock.Anything).
		Return([]*materialised.Document{{ResourceType: "team", GamedayID: teamA}}, nil)

	exec := traversal.NewExecutor(store)

	result, err := exec.Query(context.Background(), in.QueryRequest{
		RootType:        "competition",
		RootExternalKey: "x",
		Targets:         []in.QueryTarget{{Type: "team", Limit: 1}},
	})

	require.NoError(t, err)
	tr := result.Results["team"]
	require.Len(t, tr.Items, 1)
	require.Len(t, tr.OverflowIDs, 1)
	require.Equal(t, "team", tr.OverflowType)
}
