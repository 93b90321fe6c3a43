package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gameday/aggregation-api/pkg/domain/aggregation/usecases"
	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
	aggregation_out "github.com/gameday/aggregation-api/test/mocks/domain/ports/out"
)

func TestBuildAggregationUseCase_Build_InvalidRequestNamesNoEntity(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	uc := usecases.NewBuildAggregationUseCase(store)

	_, err := uc.Build(context.Background(), in.BuildRequest{})

	require.Error(t, err)
	require.True(t, common.IsInvalidInputError(err))
}

func TestBuildAggregationUseCase_Build_SourceMissingReturnsNotFound(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	store.On("CountMatching", mock.Anything, "venues", mock.Anything).Return(int64(0), nil)

	uc := usecases.NewBuildAggregationUseCase(store)

	_, err := uc.Build(context.Background(), in.BuildRequest{EntityType: "venue", Scope: "fifa", ID: "v1"})

	require.Error(t, err)
	require.True(t, common.IsNotFoundError(err))
}

func TestBuildAggregationUseCase_Build_UnknownEntityTypeIsInvalid(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	uc := usecases.NewBuildAggregationUseCase(store)

	_, err := uc.Build(context.Background(), in.BuildRequest{EntityType: "spaceship", Scope: "fifa", ID: "1"})

	require.Error(t, err)
	require.True(t, common.IsInvalidInputError(err))
}

func TestBuildAggregationUseCase_Build_SuccessWithNoNeighboursSkipsReconcile(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	gamedayID := uuid.New()

	store.On("CountMatching", mock.Anything, "venues", mock.Anything).Return(int64(1), nil)
	store.On("FindMaterialised", mock.Anything, "venue", mock.Anything).Return(nil, false, nil)
	store.On("FindOne", mock.Anything, "venues", mock.Anything, mock.AnythingOfType("*entities.Venue")).
		Run(func(args mock.Arguments) {
			venue := args.Get(3).(*entities.Venue)
			venue.GamedayID = gamedayID
			venue.ExternalID = "v1"
			venue.ExternalIDScope = "fifa"
		}).
		Return(true, nil)
	store.On("UpsertMaterialised", mock.Anything, mock.Anything).Return(nil)

	uc := usecases.NewBuildAggregationUseCase(store)

	doc, err := uc.Build(context.Background(), in.BuildRequest{EntityType: "venue", Scope: "fifa", ID: "v1"})

	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, gamedayID, doc.GamedayID)
	require.Equal(t, "venue", doc.ResourceType)

	store.AssertNotCalled(t, "BulkWriteMaterialised", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildAggregationUseCase_Build_StaffRequestMissingFieldsIsInvalid(t *testing.T) {
	store := aggregation_out.NewMockStore(t)
	uc := usecases.NewBuildAggregationUseCase(store)

	_, err := uc.Build(context.Background(), in.BuildRequest{StaffRole: "team"})

	require.Error(t, err)
	require.True(t, common.IsInvalidInputError(err))
}
