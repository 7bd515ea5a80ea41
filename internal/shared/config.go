package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library   LibraryConfig   `toml:"library"`
	Database  DatabaseConfig  `toml:"database"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Playlists PlaylistsConfig `toml:"playlists"`
	Ratings   RatingsConfig   `toml:"ratings"`
	Favorites FavoritesConfig `toml:"favorites"`
	Mixtape   MixtapeConfig   `toml:"mixtape"`
	Meander   MeanderConfig   `toml:"meander"`
}

// LibraryConfig locates the host application's library export and the output directory.
type LibraryConfig struct {
	ExportDir      string `toml:"export_dir"`
	OutputDir      string `toml:"output_dir"`
	SourcePlaylist string `toml:"source_playlist"`
}

// DatabaseConfig contains run-history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ScoringConfig contains scoring calibration overrides.
// Zero values fall back to the built-in defaults.
type ScoringConfig struct {
	TargetMedianScore   float64  `toml:"target_median_score"`
	ScoreBase           float64  `toml:"score_base"`
	SimilaritySharpness float64  `toml:"similarity_sharpness"`
	DownrankedArtists   []string `toml:"downranked_artists"`
	DownrankedGenres    []string `toml:"downranked_genres"`
}

// PlaylistsConfig controls generated playlist outputs.
type PlaylistsConfig struct {
	ForceUpdate      bool           `toml:"force_update"`
	UpdateEveryHours float64        `toml:"update_every_hours"`
	Shuffle          PlaylistOutput `toml:"shuffle"`
	Overdue          PlaylistOutput `toml:"overdue"`
}

// PlaylistOutput describes one generated playlist.
type PlaylistOutput struct {
	Enabled    bool   `toml:"enabled"`
	Name       string `toml:"name"`
	SaveTracks bool   `toml:"save_tracks"`
}

// RatingsConfig controls rating-bin assignment.
type RatingsConfig struct {
	Update bool `toml:"update"`
}

// FavoritesConfig controls favorite marking by score percentile.
type FavoritesConfig struct {
	Update     bool    `toml:"update"`
	TopPercent float64 `toml:"top_percent"`
}

// MixtapeConfig controls the mixtape builder.
type MixtapeConfig struct {
	BudgetMinutes  float64 `toml:"budget_minutes"`
	SkipWindowDays float64 `toml:"skip_window_days"`
	PlayWindowDays float64 `toml:"play_window_days"`
}

// MeanderConfig controls the meander walk.
type MeanderConfig struct {
	Steps  int `toml:"steps"`
	Window int `toml:"window"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
