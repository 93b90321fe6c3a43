package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"

	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// AggregateController adapts the build routes (§6) onto in.BuildAPI (C4).
type AggregateController struct {
	helper *ControllerHelper
	api    in.BuildAPI
}

func NewAggregateController(c container.Container) *AggregateController {
	var api in.BuildAPI
	if err := c.Resolve(&api); err != nil {
		panic(err)
	}

	return &AggregateController{helper: NewControllerHelper(), api: api}
}

// Build handles POST /aggregate/{type}/{scope}/{id}.
func (ac *AggregateController) Build(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		req := in.BuildRequest{
			EntityType: vars["type"],
			Scope:      vars["scope"],
			ID:         vars["id"],
		}

		started := time.Now()
		doc, err := ac.api.Build(r.Context(), req)
		ac.helper.WriteBuildResult(w, r, string(entities.Normalise(req.EntityType)), started, doc, err)
	}
}

// BuildStaff handles POST /aggregate/staff/sp/{spScope}/{spId}/{role}/{orgScope}/{orgId}.
func (ac *AggregateController) BuildStaff(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		req := in.BuildRequest{
			StaffSportsPersonScope: vars["spScope"],
			StaffSportsPersonID:    vars["spId"],
			StaffRole:              keycodec.StaffRole(vars["role"]),
			StaffOrgScope:          vars["orgScope"],
			StaffOrgID:             vars["orgId"],
		}

		started := time.Now()
		doc, err := ac.api.Build(r.Context(), req)
		ac.helper.WriteBuildResult(w, r, string(entities.ResourceTypeStaff), started, doc, err)
	}
}

// BuildKeyMoment handles POST /aggregate/km/{eventScope}/{eventId}/{type}/{subType}/{dateTime}.
func (ac *AggregateController) BuildKeyMoment(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		req := in.BuildRequest{
			KMEventScope: vars["eventScope"],
			KMEventID:    vars["eventId"],
			KMType:       vars["type"],
			KMSubType:    vars["subType"],
			KMDateTime:   vars["dateTime"],
		}

		started := time.Now()
		doc, err := ac.api.Build(r.Context(), req)
		ac.helper.WriteBuildResult(w, r, string(entities.ResourceTypeKeyMoment), started, doc, err)
	}
}

// BuildRanking handles
// POST /aggregate/rankings/{lType}/{lScope}/{lId}/{pType}/{pScope}/{pId}/{dateTime}/{position}.
func (ac *AggregateController) BuildRanking(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		position, err := strconv.Atoi(vars["position"])
		if err != nil {
			ac.helper.WriteBadRequest(w, r, "position must be an integer")
			return
		}

		req := in.BuildRequest{
			RankingLocusType:  vars["lType"],
			RankingLocusScope: vars["lScope"],
			RankingLocusID:    vars["lId"],
			RankingSubjType:   vars["pType"],
			RankingSubjScope:  vars["pScope"],
			RankingSubjID:     vars["pId"],
			RankingDateTime:   vars["dateTime"],
			RankingPosition:   position,
		}

		started := time.Now()
		doc, err := ac.api.Build(r.Context(), req)
		ac.helper.WriteBuildResult(w, r, string(entities.ResourceTypeRanking), started, doc, err)
	}
}
