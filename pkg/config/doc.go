// Package config loads the server configuration from the environment
// and, in development mode, from a YAML file.
package config
