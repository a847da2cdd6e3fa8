package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rosarium/internal/timeline"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Sheet   SheetConfig       `yaml:"sheet"`
	Watch   WatchConfig       `yaml:"watch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Sheet.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where the garden snapshot lives.
//
// Path is the JSON file for the file driver and the database file for the
// sqlite driver; the memory driver ignores it. QuotaBytes caps the encoded
// snapshot size, 0 meaning no limit.
type StorageConfig struct {
	Driver       string        `yaml:"driver"`
	Path         string        `yaml:"path"`
	QuotaBytes   int64         `yaml:"quota_bytes"`
	SaveDebounce time.Duration `yaml:"save_debounce"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFile, DriverSQLite, DriverMemory)),
		validation.Field(&c.Path, validation.When(c.Driver != DriverMemory, validation.Required)),
		validation.Field(&c.QuotaBytes, validation.Min(int64(0))),
		validation.Field(&c.SaveDebounce, validation.Min(time.Duration(0))),
	)
}

// SheetConfig holds the year window bounds and the sheet geometry in pixels.
type SheetConfig struct {
	FloorYear        int     `yaml:"floor_year"`
	CeilingYear      int     `yaml:"ceiling_year"`
	AppendThreshold  float64 `yaml:"append_threshold"`
	PrependThreshold float64 `yaml:"prepend_threshold"`
	ColumnWidth      float64 `yaml:"column_width"`
	SidebarWidth     float64 `yaml:"sidebar_width"`
}

// Validate validates the sheet configuration.
func (c *SheetConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.FloorYear, validation.Required, validation.Min(1)),
		validation.Field(&c.CeilingYear, validation.Required),
		validation.Field(&c.AppendThreshold, validation.Min(0.0)),
		validation.Field(&c.PrependThreshold, validation.Min(0.0)),
		validation.Field(&c.ColumnWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.SidebarWidth, validation.Min(0.0)),
	); err != nil {
		return err
	}
	if c.CeilingYear < c.FloorYear {
		return fmt.Errorf("sheet: ceiling_year %d is before floor_year %d", c.CeilingYear, c.FloorYear)
	}
	return nil
}

// Window converts the sheet section to the window manager's configuration.
func (c *SheetConfig) Window() timeline.Config {
	return timeline.Config{
		FloorYear:        c.FloorYear,
		CeilingYear:      c.CeilingYear,
		AppendThreshold:  c.AppendThreshold,
		PrependThreshold: c.PrependThreshold,
		ColumnWidth:      c.ColumnWidth,
		SidebarWidth:     c.SidebarWidth,
	}
}

// WatchConfig controls reloading the snapshot file when another process
// replaces it. Only the file driver is watched.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	win := timeline.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver:       DriverFile,
			Path:         "./data/garden.json",
			SaveDebounce: 500 * time.Millisecond,
		},
		Sheet: SheetConfig{
			FloorYear:        win.FloorYear,
			CeilingYear:      win.CeilingYear,
			AppendThreshold:  win.AppendThreshold,
			PrependThreshold: win.PrependThreshold,
			ColumnWidth:      win.ColumnWidth,
			SidebarWidth:     win.SidebarWidth,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
