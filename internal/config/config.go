package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"
	ModeScan   = "scan"

	// Output formats for scan mode
	FormatText = "text"
	FormatJSON = "json"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "MCP_PDF"
)

// ErrVersionRequested is returned by Load when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the PDF counter
type Config struct {
	// Server configuration
	Mode string // "stdio", "server" or "scan"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes
	Workers      int   // 0 means GOMAXPROCS

	// Scan mode
	File       string // PDF bundle to scan
	FieldsFile string // field descriptor file
	Format     string // "text" or "json"

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		Format:       FormatText,
		Version:      "1.0.0",
		ServerName:   "mcp-pdf-counter",
		LogLevel:     DefaultLogLevel,
	}
}

// LoadFromFlags parses the process arguments and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load builds a configuration from command line arguments, MCP_PDF_*
// environment variables and an optional --config file, in that order of
// precedence, then validates it.
func Load(program string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, ErrVersionRequested
		}
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)

	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = usage(flags, program, os.Stderr)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(v, cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("file", cfg.File)
	v.SetDefault("fields", cfg.FieldsFile)
	v.SetDefault("format", cfg.Format)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'server' for HTTP, 'scan' for a one-off scan")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Int("workers", cfg.Workers, "Goroutines resolving page geometry and scanning files (0 = number of CPUs)")
	flags.String("file", cfg.File, "PDF bundle to scan (scan mode)")
	flags.String("fields", cfg.FieldsFile, "Field descriptor file, .yaml, .json or .toml (scan mode)")
	flags.String("format", cfg.Format, "Scan output format: 'text' or 'json'")
	flags.String("config", "", "Optional configuration file holding any of the keys above")
}

func usage(flags *pflag.FlagSet, program string, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage of %s:\n", program)
		fmt.Fprintf(w, "\nMCP PDF Counter - counts the documents inside multi-document PDF bundles\n\n")
		fmt.Fprintf(w, "Options:\n")
		flags.SetOutput(w)
		flags.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  %s                                          # stdio mode, current directory (default)\n", program)
		fmt.Fprintf(w, "  %s --mode=server --dir=/path/to/pdfs        # streamable HTTP server\n", program)
		fmt.Fprintf(w, "  %s --mode=scan --file=bundle.pdf --fields=fields.yaml --format=json\n", program)
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		for _, key := range []string{"mode", "host", "port", "dir", "loglevel", "maxfilesize", "workers", "file", "fields", "format"} {
			fmt.Fprintf(w, "  %s_%s\n", envPrefix, strings.ToUpper(key))
		}
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.Workers = v.GetInt("workers")
	cfg.File = v.GetString("file")
	cfg.FieldsFile = v.GetString("fields")
	cfg.Format = strings.ToLower(v.GetString("format"))
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.PDFDirectory, &c.File, &c.FieldsFile} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStdio, ModeServer, ModeScan:
	default:
		return errors.New("mode must be one of 'stdio', 'server' or 'scan'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Mode == ModeScan {
		if c.File == "" {
			return errors.New("scan mode requires --file")
		}
		if c.FieldsFile == "" {
			return errors.New("scan mode requires --fields")
		}
	} else if err := c.ensureDirectory(); err != nil {
		return err
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be one of: text, json)", c.Format)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ensureDirectory creates the PDF directory when it does not exist
func (c *Config) ensureDirectory() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// SlogLevel maps the configured log level to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, Workers: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.Workers)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsScanMode returns true for a one-off scan from the command line
func (c *Config) IsScanMode() bool {
	return c.Mode == ModeScan
}
