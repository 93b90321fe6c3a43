package ioc

import (
	"os"

	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
)

// EnvironmentConfig reads the service's runtime configuration from the
// process environment (§6, §9).
func EnvironmentConfig() (common.Config, error) {
	config := common.Config{
		MongoDB: common.MongoDBConfig{
			URI:            os.Getenv("MONGOURL"),
			DBName:         os.Getenv("MONGODB"),
			SinkCollection: envOrDefault("MAT_AGG_COLLECTION_NAME", entities.DefaultSinkCollection),
		},
		ExpressPort: envOrDefault("EXPRESS_PORT", "8080"),
		LogPath:     os.Getenv("LOG_PATH"),
		ServiceName: envOrDefault("SERVICE_NAME", "aggregation-api"),
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
