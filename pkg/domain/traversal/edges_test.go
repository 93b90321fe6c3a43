package traversal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/traversal"
)

func TestShortestPath_SameTypeReturnsEmptyPath(t *testing.T) {
	path, err := traversal.ShortestPath("team", "team")

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestShortestPath_DirectEdge(t *testing.T) {
	path, err := traversal.ShortestPath("competition", "stage")

	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "competition", path[0].From)
	assert.Equal(t, "stage", path[0].Field)
	assert.Equal(t, "stage", path[0].To)
	assert.Equal(t, 0, path[0].Depth)
}

func TestShortestPath_MultiHop(t *testing.T) {
	path, err := traversal.ShortestPath("sportsperson", "nation")

	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, "nation", path[len(path)-1].To)

	for i, hop := range path {
		assert.Equal(t, i, hop.Depth)
	}
}

func TestShortestPath_IsDeterministic(t *testing.T) {
	first, err := traversal.ShortestPath("team", "sgo")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := traversal.ShortestPath("team", "sgo")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestShortestPath_UnreachableTargetReturnsNoPathError(t *testing.T) {
	_, err := traversal.ShortestPath("venue", "ranking")

	require.Error(t, err)
	assert.True(t, common.IsNoPathError(err))
}
