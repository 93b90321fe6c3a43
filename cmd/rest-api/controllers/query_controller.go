package controllers

import (
	"context"
	"net/http"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"

	"github.com/gameday/aggregation-api/pkg/domain/keycodec"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/infra/metrics"
)

// legacyAggregations maps the GET route's ?aggregation= shortcut names to
// the traversal targets they expand to (§6: "legacy inline traversals").
// cs = competition -> stage, se = stage -> event, ev = event -> team +
// sportsperson + venue, ekm = event -> keymoment.
var legacyAggregations = map[string][]in.QueryTarget{
	"cs":  {{Type: "stage"}},
	"se":  {{Type: "event"}},
	"ev":  {{Type: "team"}, {Type: "sportsperson"}, {Type: "venue"}},
	"ekm": {{Type: "keymoment"}},
}

// QueryController adapts GET /{type}/{scope}/{id} onto in.SingleFetchAPI for
// the plain-document case, and onto in.QueryAPI (C6/C7) when the caller asks
// for one of the legacy inline traversals via ?aggregation=.
type QueryController struct {
	helper     *ControllerHelper
	singleFetch in.SingleFetchAPI
	query      in.QueryAPI
}

func NewQueryController(c container.Container) *QueryController {
	var singleFetch in.SingleFetchAPI
	if err := c.Resolve(&singleFetch); err != nil {
		panic(err)
	}

	var query in.QueryAPI
	if err := c.Resolve(&query); err != nil {
		panic(err)
	}

	return &QueryController{helper: NewControllerHelper(), singleFetch: singleFetch, query: query}
}

// Get handles GET /{type}/{scope}/{id}?aggregation=<cs|se|ev|ekm>.
func (qc *QueryController) Get(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		entityType, scope, id := vars["type"], vars["scope"], vars["id"]

		aggregation := r.URL.Query().Get("aggregation")
		if aggregation == "" {
			doc, found, err := qc.singleFetch.FetchByExternalKey(r.Context(), entityType, scope, id)
			if qc.helper.HandleError(w, r, err, "single fetch failed") {
				return
			}
			if !found {
				qc.helper.WriteSuccess(w, r, nil, http.StatusNotFound)
				return
			}
			qc.helper.WriteOK(w, r, doc)
			return
		}

		targets, ok := legacyAggregations[aggregation]
		if !ok {
			qc.helper.WriteBadRequest(w, r, "unknown aggregation shortcut "+aggregation)
			return
		}

		req := in.QueryRequest{
			RootType:        entityType,
			RootExternalKey: keycodec.EncodeEntityKey(id, scope),
			Targets:         targets,
			SortBy:          in.SortByInsertion,
		}

		metrics.RecordTraversalQuery(req.RootType)
		result, err := qc.query.Query(r.Context(), req)
		if qc.helper.HandleError(w, r, err, "legacy aggregation query failed") {
			return
		}
		for _, tr := range result.Results {
			if tr.OverflowType != "" {
				metrics.RecordTraversalOverflow(tr.OverflowType, len(tr.OverflowIDs))
			}
		}
		qc.helper.WriteOK(w, r, result)
	}
}
