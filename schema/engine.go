package schema

// SearchDepth is the tavily-style search thoroughness knob.
type SearchDepth string

const (
	SearchDepthBasic    SearchDepth = "basic"
	SearchDepthAdvanced SearchDepth = "advanced"
)

// DockerLifecycleConfig describes how to manage a locally-hosted back end
// (e.g. SearXNG) as a subprocess-compose service.
type DockerLifecycleConfig struct {
	AutoStart     bool
	AutoStop      bool
	ComposeFile   string
	ContainerName string
	HealthEndpoint string
	InitTimeoutMs int
}

// EngineConfig is the configuration for one search engine. It is a tagged
// variant keyed by Type; fields not relevant to a given Type are left at
// their zero value.
type EngineConfig struct {
	Type        string
	Id          EngineId
	Enabled     bool
	DisplayName string

	MonthlyQuota              int
	CreditCostPerSearch       int
	LowCreditThresholdPercent int

	APIKeyEnv string
	Endpoint  string

	// SearchDepth is tavily-specific.
	SearchDepth SearchDepth

	// DefaultLimit is brave/searxng-specific.
	DefaultLimit int

	// Docker is set for subprocess-lifecycle-managed engines
	// (linkup, searxng).
	Docker *DockerLifecycleConfig
}

// IsLocal reports whether the engine is backed by a locally managed
// subprocess rather than a remote cloud API.
func (c EngineConfig) IsLocal() bool {
	return c.Docker != nil
}
