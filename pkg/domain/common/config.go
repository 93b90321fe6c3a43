package common

// MongoDBConfig holds the connection parameters for the document store.
type MongoDBConfig struct {
	URI            string
	DBName         string
	SinkCollection string // MAT_AGG_COLLECTION_NAME
}

// Config is the single configuration object passed to constructors, replacing
// any package-level shared config object (§9 design note).
type Config struct {
	MongoDB     MongoDBConfig
	ExpressPort string // EXPRESS_PORT
	LogPath     string // LOG_PATH
	ServiceName string // SERVICE_NAME
}
