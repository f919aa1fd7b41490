package main

// Driver selection for the pluggable pieces. Every driver-specific config
// struct (pg.Config, redis.Config, mongo.Config, email.Config) is loaded
// lazily, only when its driver is selected, so a memory/dev deployment runs
// with zero required environment variables.
type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"notifyd"`

	// BaseURL prefixes the relative links embedded in outgoing emails.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	StorageDriver string `env:"NOTIFY_STORAGE_DRIVER" envDefault:"memory"` // memory, postgres, mongo
	MongoDatabase string `env:"NOTIFY_MONGO_DATABASE" envDefault:"elearn"`

	RealtimeDriver string `env:"NOTIFY_REALTIME_DRIVER" envDefault:"memory"` // memory, redis
	RealtimeBuffer int    `env:"NOTIFY_REALTIME_BUFFER" envDefault:"16"`

	EmailDriver string `env:"NOTIFY_EMAIL_DRIVER" envDefault:"dev"` // dev, postmark
	EmailDevDir string `env:"NOTIFY_EMAIL_DEV_DIR" envDefault:"./outbox"`

	// IdentityHeader carries the authenticated user ID set by the platform's
	// gateway in front of this service.
	IdentityHeader string `env:"NOTIFY_IDENTITY_HEADER" envDefault:"X-User-ID"`

	// IngestToken, when set, is required in the X-Internal-Token header of
	// POST /internal/events requests.
	IngestToken string `env:"NOTIFY_INGEST_TOKEN"`

	// DirectoryURL is the base URL of the platform's internal directory API
	// used to resolve admins and enrolled students. When empty those
	// recipient lists resolve to nothing.
	DirectoryURL string `env:"NOTIFY_DIRECTORY_URL"`
}
