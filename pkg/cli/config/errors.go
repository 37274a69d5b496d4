package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration loading
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrUnsupportedFormat  = goerr.New("unsupported configuration file format")
	ErrMissingCredentials = goerr.New("required credentials are not configured")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ProviderKey   = "provider"
	BackendKey    = "backend"
)
