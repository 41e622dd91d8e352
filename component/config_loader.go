package component

// ConfigLoader configuration loader interface
//
// Provides unified configuration reading capability, components read their own configurations through this interface
// Avoid component dependencies on specific configuration structures
type ConfigLoader interface {
	// Get configuration item
	//
	// Parameters:
	// key: configuration key (e.g., "health.providers.jwt.check_interval")
	Get(key string) interface{}

	// Unmarshal deserializes the configuration into a struct
	//
	// Example:
	//   var cfg health.ManagerConfig
	//   if err := loader.Unmarshal("health", &cfg); err != nil {
	//       return err
	//   }
	Unmarshal(key string, v interface{}) error

	// GetString Get string configuration
	GetString(key string) string

	// Get integer configuration
	GetInt(key string) int

	// GetBool Get boolean configuration
	GetBool(key string) bool

	// Check if the configuration item exists
	IsSet(key string) bool
}
