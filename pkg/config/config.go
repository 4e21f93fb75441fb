package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	klog "k8s.io/klog/v2"
)

// Mode is the deployment mode of the server.
type Mode string

const (
	// ModeDevelopment serves a liveness text at the root path and reads
	// the config file.
	ModeDevelopment Mode = "development"

	// ModeProduction serves the frontend build and ignores the config
	// file.
	ModeProduction Mode = "production"
)

const (
	// ModeEnvVar is the name of the environment variable selecting the
	// deployment mode.
	ModeEnvVar = "SHOP_ENV"

	// PortEnvVar is the name of the environment variable overriding the
	// listen port.
	PortEnvVar = "PORT"

	// DefaultFile is the config file read in development mode.
	DefaultFile = "config/config.yaml"
)

const (
	fileKeyPort                   = "port"
	fileKeyStaticDir              = "staticDir"
	fileKeyDefaultMetricsInterval = "defaultMetricsInterval"
	fileKeyShutdownTimeout        = "shutdownTimeout"
)

// Config is the server configuration.
type Config struct {
	// Mode is the deployment mode.
	Mode Mode

	// Port is the TCP port the server listens on.
	Port int

	// StaticDir is the directory of the frontend build served in
	// production mode.
	StaticDir string

	// DefaultMetricsInterval is the refresh interval of the process and
	// runtime metrics.
	DefaultMetricsInterval time.Duration

	// ShutdownTimeout is the maximum time in-flight requests may take
	// to complete at shutdown.
	ShutdownTimeout time.Duration
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Mode:                   ModeDevelopment,
		Port:                   4000,
		StaticDir:              "frontend/build",
		DefaultMetricsInterval: 10 * time.Second,
		ShutdownTimeout:        30 * time.Second,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load returns the configuration built from the defaults, the config file
// at the given path (development mode only) and the environment.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv, os.ReadFile)
}

func load(
	path string,
	lookupEnv func(string) (string, bool),
	readFile func(string) ([]byte, error),
) (*Config, error) {
	dest := Default()

	mode, err := parseMode(lookupEnv)
	if err != nil {
		return nil, err
	}
	dest.Mode = mode

	if mode == ModeDevelopment && path != "" {
		data, err := readFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			klog.V(3).InfoS("Config file not found, using defaults", "path", path)
		case err != nil:
			return nil, errors.Wrapf(err, "cannot read config file %q", path)
		default:
			if err := processFile(data, dest); err != nil {
				return nil, errors.Wrapf(err, "invalid configuration: file %q", path)
			}
		}
	}

	if strVal, ok := lookupEnv(PortEnvVar); ok && strVal != "" {
		port, err := parsePort(strVal)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid configuration: environment variable %s", PortEnvVar)
		}
		dest.Port = port
	}

	return dest, nil
}

func parseMode(lookupEnv func(string) (string, bool)) (Mode, error) {
	strVal, ok := lookupEnv(ModeEnvVar)
	if !ok || strVal == "" {
		return ModeDevelopment, nil
	}
	switch mode := Mode(strVal); mode {
	case ModeDevelopment, ModeProduction:
		return mode, nil
	default:
		return "", errors.Errorf(
			"invalid configuration: environment variable %s: unsupported mode %q",
			ModeEnvVar, strVal,
		)
	}
}

func processFile(data []byte, dest *Config) error {
	configData := map[string]string{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&configData); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "cannot parse YAML")
	}

	wrapParseError := func(cause error, key, strVal string) error {
		return errors.Wrapf(cause,
			"key %q: cannot parse value %q",
			key, strVal,
		)
	}

	parseDuration := func(key string, target *time.Duration) error {
		if strVal, ok := configData[key]; ok && strVal != "" {
			d, err := time.ParseDuration(strVal)
			if err != nil {
				return wrapParseError(err, key, strVal)
			}
			if d <= 0 {
				return wrapParseError(errors.New("must be positive"), key, strVal)
			}
			*target = d
		}
		return nil
	}

	for key := range configData {
		switch key {
		case fileKeyPort, fileKeyStaticDir, fileKeyDefaultMetricsInterval, fileKeyShutdownTimeout:
		default:
			return errors.Errorf("unknown key %q", key)
		}
	}

	if strVal, ok := configData[fileKeyPort]; ok && strVal != "" {
		port, err := parsePort(strVal)
		if err != nil {
			return wrapParseError(err, fileKeyPort, strVal)
		}
		dest.Port = port
	}
	if strVal, ok := configData[fileKeyStaticDir]; ok && strVal != "" {
		dest.StaticDir = strVal
	}
	if err := parseDuration(fileKeyDefaultMetricsInterval, &dest.DefaultMetricsInterval); err != nil {
		return err
	}
	return parseDuration(fileKeyShutdownTimeout, &dest.ShutdownTimeout)
}

func parsePort(strVal string) (int, error) {
	port, err := strconv.Atoi(strVal)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, errors.Errorf("port %d out of range", port)
	}
	return port, nil
}
