package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mote-dev/mote/internal/errors"
	"github.com/mote-dev/mote/pkg/bridge"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "mote.json"

	// DefaultPort is the default demo server port.
	DefaultPort = 8080

	// DefaultHost is the default demo server host.
	DefaultHost = "localhost"

	// DefaultSnapshotDir is the default snapshot store directory.
	DefaultSnapshotDir = "snapshots"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete mote.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Server contains demo server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Bridge contains session and wire protocol configuration.
	Bridge BridgeConfig `json:"bridge,omitempty"`

	// Snapshots contains snapshot store configuration.
	Snapshots SnapshotConfig `json:"snapshots,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains demo server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to run the demo server on.
	Port int `json:"port,omitempty"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`
}

// BridgeConfig contains session and wire protocol settings.
// Durations use Go syntax (e.g., "5s", "2m").
type BridgeConfig struct {
	// MaxSessions is the maximum number of concurrent sessions (0 = unlimited).
	MaxSessions int `json:"maxSessions,omitempty"`

	// OpTimeout is how long an operation waits for its browser reply.
	OpTimeout string `json:"opTimeout,omitempty"`

	// ReadTimeout is the WebSocket read deadline.
	ReadTimeout string `json:"readTimeout,omitempty"`

	// WriteTimeout is the WebSocket write deadline.
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// HeartbeatInterval is the time between heartbeat pings.
	HeartbeatInterval string `json:"heartbeatInterval,omitempty"`

	// ResumeWindow is how long a detached session stays resumable.
	ResumeWindow string `json:"resumeWindow,omitempty"`

	// MaxMessageSize is the maximum incoming WebSocket message size in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// Debug enables verbose bridge logging.
	Debug bool `json:"debug,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Dir is the directory where disk snapshots are stored.
	Dir string `json:"dir,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether the demo server exposes metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the scrape endpoint path (default: "/metrics").
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			OpenBrowser: false,
		},
		Bridge: BridgeConfig{
			OpTimeout:         "5s",
			ReadTimeout:       "60s",
			WriteTimeout:      "10s",
			HeartbeatInterval: "30s",
			ResumeWindow:      "2m",
			MaxMessageSize:    64 * 1024,
		},
		Snapshots: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for mote.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E140").
				WithDetail("No mote.json found in " + filepath.Dir(path)).
				WithSuggestion("Create a mote.json or run the command from a mote project")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		me := errors.New("E120").
			WithDetail("Failed to parse mote.json: " + err.Error()).
			WithSuggestion("Check that mote.json is valid JSON")
		if syn, ok := err.(*json.SyntaxError); ok {
			line, col := offsetPosition(data, syn.Offset)
			me = me.WithLocation(path, line, col)
		}
		return nil, me
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Bridge.OpTimeout == "" {
		c.Bridge.OpTimeout = "5s"
	}
	if c.Bridge.ReadTimeout == "" {
		c.Bridge.ReadTimeout = "60s"
	}
	if c.Bridge.WriteTimeout == "" {
		c.Bridge.WriteTimeout = "10s"
	}
	if c.Bridge.HeartbeatInterval == "" {
		c.Bridge.HeartbeatInterval = "30s"
	}
	if c.Bridge.ResumeWindow == "" {
		c.Bridge.ResumeWindow = "2m"
	}
	if c.Bridge.MaxMessageSize == 0 {
		c.Bridge.MaxMessageSize = 64 * 1024
	}

	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = DefaultSnapshotDir
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 1 and 65535, got " + itoa(c.Server.Port))
	}

	durations := []struct {
		field string
		value string
	}{
		{"bridge.opTimeout", c.Bridge.OpTimeout},
		{"bridge.readTimeout", c.Bridge.ReadTimeout},
		{"bridge.writeTimeout", c.Bridge.WriteTimeout},
		{"bridge.heartbeatInterval", c.Bridge.HeartbeatInterval},
		{"bridge.resumeWindow", c.Bridge.ResumeWindow},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return errors.New("E123").
				WithDetail("Field " + d.field + " has invalid duration " + d.value).
				WithExample(`"` + d.field + `": "30s"`)
		}
	}

	return nil
}

// Address returns the listen address string for the demo server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + itoa(c.Server.Port)
}

// URL returns the full URL for the demo server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// SnapshotsPath returns the absolute path to the snapshot directory.
func (c *Config) SnapshotsPath() string {
	dir := c.Snapshots.Dir
	if dir == "" {
		dir = DefaultSnapshotDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Dir(), dir)
}

// BridgeConfig converts the JSON bridge section into a *bridge.Config,
// starting from bridge defaults. Duration fields must be valid; call
// Validate first to surface nicer errors.
func (c *Config) BridgeConfig() (*bridge.Config, error) {
	bc := bridge.DefaultConfig()
	bc.Address = c.Address()
	bc.MaxSessions = c.Bridge.MaxSessions
	bc.Debug = c.Bridge.Debug
	if c.Bridge.MaxMessageSize > 0 {
		bc.MaxMessageSize = c.Bridge.MaxMessageSize
	}

	parsed := []struct {
		field string
		value string
		dst   *time.Duration
	}{
		{"bridge.opTimeout", c.Bridge.OpTimeout, &bc.OpTimeout},
		{"bridge.readTimeout", c.Bridge.ReadTimeout, &bc.ReadTimeout},
		{"bridge.writeTimeout", c.Bridge.WriteTimeout, &bc.WriteTimeout},
		{"bridge.heartbeatInterval", c.Bridge.HeartbeatInterval, &bc.HeartbeatInterval},
		{"bridge.resumeWindow", c.Bridge.ResumeWindow, &bc.ResumeWindow},
	}
	for _, p := range parsed {
		if p.value == "" {
			continue
		}
		d, err := time.ParseDuration(p.value)
		if err != nil {
			return nil, errors.New("E123").
				WithDetail("Field " + p.field + " has invalid duration " + p.value).
				Wrap(err)
		}
		*p.dst = d
	}

	return bc, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing mote.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E140").
				WithDetail("No mote.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create a mote.json at the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

// offsetPosition converts a byte offset into a 1-based line and column.
func offsetPosition(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
