package materialised_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
)

func TestProjection_KeySet(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	p := materialised.Projection{
		Keys: []materialised.KeyedRef{
			{ExternalKey: "289175 @ fifa", GamedayID: id1},
			{ExternalKey: "289176 @ fifa", GamedayID: id2},
		},
	}

	set := p.KeySet()

	assert.Len(t, set, 2)
	assert.Equal(t, id1, set["289175 @ fifa"])
	assert.Equal(t, id2, set["289176 @ fifa"])
}

func TestDocument_SetNeighbour_DedupesIDsAndKeys(t *testing.T) {
	doc := &materialised.Document{}
	id1, id2 := uuid.New(), uuid.New()

	doc.SetNeighbour("team", []uuid.UUID{id1, id1, id2}, map[string]uuid.UUID{
		"t1 @ fifa": id1,
		"t2 @ fifa": id2,
	})

	proj := doc.Neighbour("team")
	assert.Len(t, proj.IDs, 2)
	assert.Len(t, proj.Keys, 2)
	assert.ElementsMatch(t, []uuid.UUID{id1, id2}, proj.IDs)
}

func TestDocument_SetNeighbour_EmptyStillInstallsProjection(t *testing.T) {
	doc := &materialised.Document{}

	doc.SetNeighbour("venue", nil, nil)

	assert.Contains(t, doc.NeighbourTypes(), "venue")
	assert.Empty(t, doc.Neighbour("venue").IDs)
	assert.Empty(t, doc.Neighbour("venue").Keys)
}

func TestDocument_Neighbour_MissingTagReturnsZeroValue(t *testing.T) {
	doc := &materialised.Document{}

	proj := doc.Neighbour("nonexistent")

	assert.Empty(t, proj.IDs)
	assert.Empty(t, proj.Keys)
}

func TestDocument_NeighbourTypes_NilMap(t *testing.T) {
	doc := &materialised.Document{}

	assert.Empty(t, doc.NeighbourTypes())
}
