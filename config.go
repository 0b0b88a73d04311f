package sculptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/dburl"
	"github.com/samuelmaurice/sculptor/inifile"
	"github.com/samuelmaurice/sculptor/logging"
)

// ConfigFilename is the name of the configuration file.
const ConfigFilename = "sculptor.ini"

// DefaultConnectionName names the connection built from DATABASE_URL.
const DefaultConnectionName = "default"

const connectionPrefix = "connection."

// ValidLogFormats lists the accepted values of [sculptor] log.
var ValidLogFormats = []string{"json", "pretty"}

// Config holds the settings read from sculptor.ini.
type Config struct {
	// ConfigDir is the directory containing sculptor.ini.
	ConfigDir string

	// Default names the connection used by entities that name none.
	Default string

	// Debug turns query logging on.
	Debug bool

	// Log selects the query log format: "json" or "pretty".
	Log string

	// Connections in file order.
	Connections []ConnectionConfig
}

// ConnectionConfig is one [connection.<name>] section.
type ConnectionConfig struct {
	Name    string
	URL     string
	Dialect string
}

// LoadConfig reads sculptor.ini from dir (or the working directory if empty).
//
// When the file declares no [connection.*] section, DATABASE_URL is used as a
// connection named "default".
func LoadConfig(dir string) (*Config, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	iniPath := filepath.Join(dir, ConfigFilename)
	if _, err := os.Stat(iniPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s\n"+
			"  Hint: Run 'sculptor init <database-url>' to create one, or run from the directory that contains it",
			ConfigFilename, dir)
	}

	f, err := inifile.ParseFile(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}

	cfg, err := ParseConfig(f)
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = dir
	return cfg, nil
}

// ParseConfig builds a Config from a parsed file.
func ParseConfig(f *inifile.File) (*Config, error) {
	cfg := &Config{
		Default: f.Get("sculptor", "default"),
		Log:     strings.ToLower(f.Get("sculptor", "log")),
	}

	debug, err := f.Bool("sculptor", "debug")
	if err != nil {
		return nil, err
	}
	cfg.Debug = debug

	if cfg.Log == "" {
		cfg.Log = "json"
	}
	if !validLogFormat(cfg.Log) {
		return nil, fmt.Errorf("[sculptor] log: %q is not one of %s", cfg.Log, strings.Join(ValidLogFormats, ", "))
	}

	for _, s := range f.SectionsWithPrefix(connectionPrefix) {
		name := s.Suffix(connectionPrefix)
		if name == "" {
			return nil, fmt.Errorf("[%s]: connection name is required", s.Name)
		}
		conn, err := newConnectionConfig(name, s.Get("url"))
		if err != nil {
			return nil, fmt.Errorf("[%s]: %w", s.Name, err)
		}
		cfg.Connections = append(cfg.Connections, conn)
	}

	if len(cfg.Connections) == 0 {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			conn, err := newConnectionConfig(DefaultConnectionName, url)
			if err != nil {
				return nil, fmt.Errorf("DATABASE_URL: %w", err)
			}
			cfg.Connections = append(cfg.Connections, conn)
		}
	}

	if cfg.Default == "" && len(cfg.Connections) > 0 {
		cfg.Default = cfg.Connections[0].Name
	}
	if cfg.Default != "" {
		if _, ok := cfg.Connection(cfg.Default); !ok {
			return nil, fmt.Errorf("[sculptor] default: %w: %s", ErrConnectionNotFound, cfg.Default)
		}
	}

	return cfg, nil
}

func newConnectionConfig(name, url string) (ConnectionConfig, error) {
	if url == "" {
		return ConnectionConfig{}, errors.New("url is required")
	}
	dialect, err := dburl.InferDialect(url)
	if err != nil {
		return ConnectionConfig{}, err
	}
	return ConnectionConfig{Name: name, URL: url, Dialect: dialect}, nil
}

func validLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Connection returns the named connection settings.
func (c *Config) Connection(name string) (ConnectionConfig, bool) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return ConnectionConfig{}, false
}

// Logger returns the logger selected by Log.
func (c *Config) Logger() *slog.Logger {
	return logging.ForFormat(c.Log)
}

// Open connects every configured connection and returns a registry with the
// default connection, debug flag and query logger applied. If any connection
// fails, the ones already opened are closed.
func (c *Config) Open(ctx context.Context) (*database.Registry, error) {
	if len(c.Connections) == 0 {
		return nil, fmt.Errorf("no connections configured\n" +
			"  Hint: add a [connection.<name>] section to " + ConfigFilename + " or set DATABASE_URL")
	}

	registry := database.NewRegistry()
	for _, conn := range c.Connections {
		sqlConn, err := database.Open(ctx, conn.URL)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connection %s: %w", conn.Name, err), registry.Close())
		}
		registry.Register(conn.Name, sqlConn)
	}

	if err := registry.SetDefault(c.Default); err != nil {
		return nil, errors.Join(err, registry.Close())
	}
	registry.SetDebug(c.Debug)
	registry.SetQueryLogger(logging.QueryLogger(c.Logger()))

	return registry, nil
}
