// Package config defines configuration structures for the geogate CLI.
//
// Configuration is layered, later sources winning:
//   - Built-in defaults (Default)
//   - YAML configuration file (LoadFromFile)
//   - .env files (LoadDotEnv), then environment variables (GEOGATE_ prefix)
//   - Command-line flags (Merge)
//
// Durations are Go duration strings ("1500ms", "10s"); sizes accept
// "50MB"-style values.
//
// # Example
//
//	state_url: file:///var/lib/geogate/state
//	output_url: file:///home/user/Downloads
//	locale: en-US
//	location:
//	  provider: static
//	  latitude: 28.6139
//	  longitude: 77.2090
//	timing:
//	  verify_delay: 1500ms
//	retrieval:
//	  timeout: 30s
//	  max_size: 50MB
package config
