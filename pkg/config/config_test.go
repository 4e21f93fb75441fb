package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lithammer/dedent"
	"gotest.tools/v3/assert"
)

func fakeEnv(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func fakeFiles(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		return []byte(content), nil
	}
}

func Test_load_Defaults(t *testing.T) {
	t.Parallel()

	// EXERCISE
	result, err := load(DefaultFile, fakeEnv(nil), fakeFiles(nil))

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, result, Default())
	assert.Equal(t, result.Addr(), ":4000")
}

func Test_load_DevelopmentFile(t *testing.T) {
	t.Parallel()

	// SETUP
	files := map[string]string{
		DefaultFile: dedent.Dedent(`
			port: 5000
			staticDir: /srv/shop
			defaultMetricsInterval: 2s
			shutdownTimeout: 1m
			`),
	}

	// EXERCISE
	result, err := load(DefaultFile, fakeEnv(nil), fakeFiles(files))

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, result, &Config{
		Mode:                   ModeDevelopment,
		Port:                   5000,
		StaticDir:              "/srv/shop",
		DefaultMetricsInterval: 2 * time.Second,
		ShutdownTimeout:        time.Minute,
	})
}

func Test_load_EmptyFile(t *testing.T) {
	t.Parallel()

	// SETUP
	files := map[string]string{DefaultFile: "# nothing configured\n"}

	// EXERCISE
	result, err := load(DefaultFile, fakeEnv(nil), fakeFiles(files))

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, result, Default())
}

func Test_load_ProductionIgnoresFile(t *testing.T) {
	t.Parallel()

	// SETUP
	env := map[string]string{ModeEnvVar: "production"}
	files := map[string]string{DefaultFile: "port: 5000\n"}

	// EXERCISE
	result, err := load(DefaultFile, fakeEnv(env), fakeFiles(files))

	// VERIFY
	assert.NilError(t, err)
	assert.Equal(t, result.Mode, ModeProduction)
	assert.Equal(t, result.Port, 4000)
}

func Test_load_PortFromEnvironmentWins(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"", "development", "production"} {
		mode := mode
		t.Run(fmt.Sprintf("mode_%q", mode), func(t *testing.T) {
			t.Parallel()

			// SETUP
			env := map[string]string{ModeEnvVar: mode, PortEnvVar: "8080"}
			files := map[string]string{DefaultFile: "port: 5000\n"}

			// EXERCISE
			result, err := load(DefaultFile, fakeEnv(env), fakeFiles(files))

			// VERIFY
			assert.NilError(t, err)
			assert.Equal(t, result.Port, 8080)
		})
	}
}

func Test_load_Errors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name          string
		env           map[string]string
		file          string
		expectedError string
	}{
		{
			name:          "unsupported_mode",
			env:           map[string]string{ModeEnvVar: "staging"},
			expectedError: `invalid configuration: environment variable SHOP_ENV: unsupported mode "staging"`,
		},
		{
			name:          "invalid_port_env",
			env:           map[string]string{PortEnvVar: "http"},
			expectedError: `invalid configuration: environment variable PORT: strconv.Atoi: parsing "http": invalid syntax`,
		},
		{
			name:          "port_out_of_range",
			env:           map[string]string{PortEnvVar: "70000"},
			expectedError: `invalid configuration: environment variable PORT: port 70000 out of range`,
		},
		{
			name:          "invalid_duration",
			file:          "shutdownTimeout: soon\n",
			expectedError: `invalid configuration: file "config/config.yaml": key "shutdownTimeout": cannot parse value "soon": time: invalid duration "soon"`,
		},
		{
			name:          "non_positive_duration",
			file:          "defaultMetricsInterval: 0s\n",
			expectedError: `invalid configuration: file "config/config.yaml": key "defaultMetricsInterval": cannot parse value "0s": must be positive`,
		},
		{
			name:          "unknown_key",
			file:          "host: localhost\n",
			expectedError: `invalid configuration: file "config/config.yaml": unknown key "host"`,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// SETUP
			files := map[string]string{}
			if tc.file != "" {
				files[DefaultFile] = tc.file
			}

			// EXERCISE
			result, err := load(DefaultFile, fakeEnv(tc.env), fakeFiles(files))

			// VERIFY
			assert.Error(t, err, tc.expectedError)
			assert.Assert(t, result == nil)
		})
	}
}

func Test_load_ReadError(t *testing.T) {
	t.Parallel()

	// SETUP
	readFile := func(string) ([]byte, error) {
		return nil, os.ErrPermission
	}

	// EXERCISE
	_, err := load(DefaultFile, fakeEnv(nil), readFile)

	// VERIFY
	assert.ErrorContains(t, err, `cannot read config file "config/config.yaml"`)
}
