// Package routing wires the HTTP surface of §6 onto the controllers.
package routing

import (
	"context"
	"net/http"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"

	"github.com/gameday/aggregation-api/cmd/rest-api/controllers"
	"github.com/gameday/aggregation-api/cmd/rest-api/middlewares"
	"github.com/gameday/aggregation-api/pkg/infra/metrics"
)

const (
	Healthcheck    string = "/healthcheck"
	HealthReady    string = "/health/ready"
	HealthLive     string = "/health/live"
	Metrics        string = "/metrics"
	LogDebug       string = "/log/debug"
	LogInfo        string = "/log/info"

	AggregateStaff   string = "/aggregate/staff/sp/{spScope}/{spId}/{role}/{orgScope}/{orgId}"
	AggregateKM      string = "/aggregate/km/{eventScope}/{eventId}/{type}/{subType}/{dateTime}"
	AggregateRanking string = "/aggregate/rankings/{lType}/{lScope}/{lId}/{pType}/{pScope}/{pId}/{dateTime}/{position}"
	Aggregate        string = "/aggregate/{type}/{scope}/{id}"

	Resource string = "/{type}/{scope}/{id}"
)

// NewRouter builds the service's gorilla/mux router: the build routes (C4),
// the legacy-traversal GET route (C6/C7), log-level and health/metrics
// endpoints (§6).
func NewRouter(ctx context.Context, c container.Container) http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.ErrorMiddleware)
	r.Use(middlewares.NewCORSMiddleware().Handler)
	r.Use(metrics.Middleware)

	aggregateController := controllers.NewAggregateController(c)
	queryController := controllers.NewQueryController(c)
	logController := controllers.NewLogController()
	healthController := controllers.NewHealthController(c)

	r.HandleFunc(AggregateStaff, aggregateController.BuildStaff(ctx)).Methods("POST")
	r.HandleFunc(AggregateKM, aggregateController.BuildKeyMoment(ctx)).Methods("POST")
	r.HandleFunc(AggregateRanking, aggregateController.BuildRanking(ctx)).Methods("POST")
	r.HandleFunc(Aggregate, aggregateController.Build(ctx)).Methods("POST")

	r.HandleFunc(LogDebug, logController.SetDebug(ctx)).Methods("POST")
	r.HandleFunc(LogInfo, logController.SetInfo(ctx)).Methods("POST")

	r.HandleFunc(Healthcheck, healthController.HealthCheck(ctx)).Methods("GET")
	r.HandleFunc(HealthReady, healthController.ReadinessCheck(ctx)).Methods("GET")
	r.HandleFunc(HealthLive, healthController.LivenessCheck(ctx)).Methods("GET")
	r.Handle(Metrics, healthController.MetricsHandler()).Methods("GET")

	r.HandleFunc(Resource, queryController.Get(ctx)).Methods("GET")

	r.HandleFunc("/{path:.*}", OptionsHandler).Methods("OPTIONS")

	return r
}
