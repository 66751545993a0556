package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/zerei-app/zerei/internal/reveal"
)

// Config represents the application configuration
type Config struct {
	DefaultCollection string              `toml:"default_collection"`
	Reveal            RevealConfig        `toml:"reveal"`
	Notifications     NotificationsConfig `toml:"notifications"`
	Profile           ProfileConfig       `toml:"profile"`
}

// RevealConfig tunes the scratch surface for terminal cells. Radii and the
// small viewport width are in half-block pixels and columns respectively.
type RevealConfig struct {
	Density            float64 `toml:"density"`
	SmallViewportWidth int     `toml:"small_viewport_width"`
	SmallBrushRadius   float64 `toml:"small_brush_radius"`
	LargeBrushRadius   float64 `toml:"large_brush_radius"`
	SmallThreshold     float64 `toml:"small_threshold"`
	LargeThreshold     float64 `toml:"large_threshold"`
	MaxBufferPixels    int     `toml:"max_buffer_pixels"`
}

// NotificationsConfig holds which notification kinds the user wants
type NotificationsConfig struct {
	CollectionInvites bool `toml:"collection_invites"`
	FriendRequests    bool `toml:"friend_requests"`
	FriendActivity    bool `toml:"friend_activity"`
	StoreUpdates      bool `toml:"store_updates"`
}

// ProfileConfig holds how the user is presented
type ProfileConfig struct {
	DisplayName      string `toml:"display_name"`
	Email            string `toml:"email"`
	AvatarSeed       string `toml:"avatar_seed"`
	UseInitialAvatar bool   `toml:"use_initial_avatar"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		DefaultCollection: "",
		Reveal: RevealConfig{
			Density:            4,
			SmallViewportWidth: 100,
			SmallBrushRadius:   3,
			LargeBrushRadius:   5,
			SmallThreshold:     0.50,
			LargeThreshold:     0.60,
			MaxBufferPixels:    4 << 20,
		},
		Notifications: NotificationsConfig{
			CollectionInvites: true,
			FriendRequests:    true,
			FriendActivity:    false,
			StoreUpdates:      true,
		},
	}
}

// Validate rejects reveal settings that would make cards impossible to
// reveal or leave the buffer size unbounded
func (r RevealConfig) Validate() error {
	switch {
	case !(r.Density > 0):
		return fmt.Errorf("reveal.density must be positive, got %v", r.Density)
	case r.SmallViewportWidth < 0:
		return fmt.Errorf("reveal.small_viewport_width must not be negative, got %d", r.SmallViewportWidth)
	case !(r.SmallBrushRadius > 0), !(r.LargeBrushRadius > 0):
		return fmt.Errorf("reveal brush radii must be positive, got %v and %v", r.SmallBrushRadius, r.LargeBrushRadius)
	case !(r.SmallThreshold > 0 && r.SmallThreshold < 1), !(r.LargeThreshold > 0 && r.LargeThreshold < 1):
		return fmt.Errorf("reveal thresholds must be between 0 and 1, got %v and %v", r.SmallThreshold, r.LargeThreshold)
	case r.MaxBufferPixels <= 0:
		return fmt.Errorf("reveal.max_buffer_pixels must be positive, got %d", r.MaxBufferPixels)
	}
	return nil
}

// SurfaceConfig converts the reveal section for the scratch surface
func (c *Config) SurfaceConfig() reveal.Config {
	return reveal.Config{
		SmallViewportWidth: float64(c.Reveal.SmallViewportWidth),
		SmallBrushRadius:   c.Reveal.SmallBrushRadius,
		LargeBrushRadius:   c.Reveal.LargeBrushRadius,
		SmallThreshold:     c.Reveal.SmallThreshold,
		LargeThreshold:     c.Reveal.LargeThreshold,
		MaxBufferPixels:    c.Reveal.MaxBufferPixels,
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetLibraryPath returns the path to the collection library
func GetLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), "zerei", "collections")
}

// GetDatabasePath returns the path to the progress database
func GetDatabasePath() string {
	return filepath.Join(GetXDGDataHome(), "zerei", "zerei.db")
}

// GetCacheDir returns the directory for generated artifacts
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), "zerei")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "zerei", "config.toml")
}

// LoadConfig loads the config file, creating it with defaults when missing.
// Keys absent from the file keep their default values.
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	if err := config.Reveal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	config := Default()
	if err := SaveConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the config file, creating its directory if needed
func SaveConfig(config *Config) error {
	configPath := GetConfigFilePath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// GetCollectionPath returns the path to a collection, either in the library or a relative path
func GetCollectionPath(name string) (string, error) {
	collectionPath := filepath.Join(GetLibraryPath(), name)
	if _, err := os.Stat(collectionPath); err == nil {
		return collectionPath, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	return "", fmt.Errorf("collection not found: %s", name)
}

// GetDefaultCollection returns the default collection name from config
func GetDefaultCollection() (string, error) {
	config, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if config.DefaultCollection == "" {
		return "", fmt.Errorf("no default collection set; run 'zerei collection set-default <name>'")
	}

	return config.DefaultCollection, nil
}

// SetDefaultCollection sets the default collection in the config
func SetDefaultCollection(name string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	config.DefaultCollection = name
	return SaveConfig(config)
}

// settingRef points at one user-editable boolean or string setting
type settingRef struct {
	b *bool
	s *string
}

func (c *Config) settings() map[string]settingRef {
	return map[string]settingRef{
		"notifications.collection_invites": {b: &c.Notifications.CollectionInvites},
		"notifications.friend_requests":    {b: &c.Notifications.FriendRequests},
		"notifications.friend_activity":    {b: &c.Notifications.FriendActivity},
		"notifications.store_updates":      {b: &c.Notifications.StoreUpdates},
		"profile.display_name":             {s: &c.Profile.DisplayName},
		"profile.email":                    {s: &c.Profile.Email},
		"profile.avatar_seed":              {s: &c.Profile.AvatarSeed},
		"profile.use_initial_avatar":       {b: &c.Profile.UseInitialAvatar},
	}
}

// SettingKeys lists the keys accepted by Get and Set, sorted
func (c *Config) SettingKeys() []string {
	refs := c.settings()
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a setting formatted as text
func (c *Config) Get(key string) (string, error) {
	ref, ok := c.settings()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting: %s", key)
	}
	if ref.b != nil {
		return strconv.FormatBool(*ref.b), nil
	}
	return *ref.s, nil
}

// Set parses value into the setting named by key
func (c *Config) Set(key, value string) error {
	ref, ok := c.settings()[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	if ref.b != nil {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setting %s expects true or false: %w", key, err)
		}
		*ref.b = v
		return nil
	}
	*ref.s = value
	return nil
}
