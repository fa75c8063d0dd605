package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{"MODE", "HOST", "PORT", "DIR", "LOGLEVEL", "MAXFILESIZE", "WORKERS", "FILE", "FIELDS", "FORMAT", "CONFIG"}

// clearEnv hides any MCP_PDF_* variables of the environment running the tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		key := envPrefix + "_" + k
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("mcp-pdf-counter", nil)
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, FormatText, cfg.Format)
	assert.True(t, filepath.IsAbs(cfg.PDFDirectory))
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090", "--dir=" + dir},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ModeServer, cfg.Mode)
				assert.Equal(t, "0.0.0.0:9090", cfg.Address())
				assert.Equal(t, dir, cfg.PDFDirectory)
			},
		},
		{
			name: "tuning",
			args: []string{"--dir", dir, "--loglevel", "DEBUG", "--maxfilesize", "2048", "--workers", "3"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, int64(2048), cfg.MaxFileSize)
				assert.Equal(t, 3, cfg.Workers)
			},
		},
		{
			name: "scan mode makes paths absolute",
			args: []string{"--mode=scan", "--file=bundle.pdf", "--fields=fields.yaml", "--format=json"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsScanMode())
				assert.True(t, filepath.IsAbs(cfg.File))
				assert.Equal(t, "bundle.pdf", filepath.Base(cfg.File))
				assert.Equal(t, "fields.yaml", filepath.Base(cfg.FieldsFile))
				assert.Equal(t, FormatJSON, cfg.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("mcp-pdf-counter", tt.args)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("MCP_PDF_MODE", "server")
	t.Setenv("MCP_PDF_PORT", "9191")
	t.Setenv("MCP_PDF_DIR", dir)
	t.Setenv("MCP_PDF_WORKERS", "6")

	cfg, err := Load("mcp-pdf-counter", nil)
	require.NoError(t, err)
	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, 6, cfg.Workers)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_PDF_PORT", "9191")
	t.Setenv("MCP_PDF_DIR", t.TempDir())

	cfg, err := Load("mcp-pdf-counter", []string{"--mode=server", "--port=7070"})
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "counter.yaml")
	require.NoError(t, os.WriteFile(file, []byte("mode: server\nport: 8181\nworkers: 2\ndir: "+dir+"\n"), 0o644))

	cfg, err := Load("mcp-pdf-counter", []string{"--config", file, "--workers=5"})
	require.NoError(t, err)
	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, 5, cfg.Workers, "flags win over the config file")

	_, err = Load("mcp-pdf-counter", []string{"--config", filepath.Join(dir, "missing.yaml")})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "invalid mode", args: []string{"--mode=http"}, wantErr: "mode must be one of"},
		{name: "invalid port", args: []string{"--mode=server", "--port=0"}, wantErr: "port must be between"},
		{name: "invalid log level", args: []string{"--loglevel=trace"}, wantErr: "invalid log level"},
		{name: "scan without file", args: []string{"--mode=scan", "--fields=f.yaml"}, wantErr: "requires --file"},
		{name: "unknown flag", args: []string{"--colour"}, wantErr: "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("mcp-pdf-counter", append(tt.args, "--dir="+t.TempDir()))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_VersionAndHelp(t *testing.T) {
	clearEnv(t)

	for _, arg := range []string{"--version", "-version", "-v"} {
		_, err := Load("mcp-pdf-counter", []string{arg})
		assert.ErrorIs(t, err, ErrVersionRequested, arg)
	}

	_, err := Load("mcp-pdf-counter", []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
