package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/roombsp/internal/geom"
)

// DefaultConfigPath is the path to the canonical room build defaults.
const DefaultConfigPath = "config/room.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// RoomConfig holds the parameters of a room model build. Omitted fields fall
// back to the defaults returned by the Get* methods.
type RoomConfig struct {
	// SplitThreshold is the balance threshold used when picking splitters.
	SplitThreshold *float64 `json:"split_threshold,omitempty"`
	// ClassifyEpsilon is the on-plane tolerance of the geometry kernel.
	ClassifyEpsilon *float64 `json:"classify_epsilon,omitempty"`
	// DisabledWalls are input wall indices excluded from the build.
	DisabledWalls []int `json:"disabled_walls,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }

// EmptyRoomConfig returns a RoomConfig with every field unset.
func EmptyRoomConfig() *RoomConfig {
	return &RoomConfig{}
}

// readJSONFile reads path after checking its extension and size.
func readJSONFile(kind, path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("%s file must have .json extension, got %q", kind, ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s file: %w", kind, err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("%s file too large: %d bytes (max %d)", kind, fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	return data, nil
}

// LoadRoomConfig loads a RoomConfig from a JSON file. The file must have a
// .json extension and be at most 1MB. Partial configs are fine.
func LoadRoomConfig(path string) (*RoomConfig, error) {
	data, err := readJSONFile("config", path)
	if err != nil {
		return nil, err
	}

	cfg := EmptyRoomConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, looking in the current
// directory and its parents. Panics if the file cannot be loaded; meant for
// tests.
func MustLoadDefaultConfig() *RoomConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadRoomConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *RoomConfig) Validate() error {
	if c.SplitThreshold != nil {
		if *c.SplitThreshold < 0 || *c.SplitThreshold > 1 {
			return fmt.Errorf("split_threshold must be between 0 and 1, got %f", *c.SplitThreshold)
		}
	}

	if c.ClassifyEpsilon != nil && *c.ClassifyEpsilon < 0 {
		return fmt.Errorf("classify_epsilon must be non-negative, got %g", *c.ClassifyEpsilon)
	}

	for _, i := range c.DisabledWalls {
		if i < 0 {
			return fmt.Errorf("disabled_walls entries must be non-negative, got %d", i)
		}
	}

	return nil
}

// GetSplitThreshold returns the split_threshold value or the default.
func (c *RoomConfig) GetSplitThreshold() float64 {
	if c.SplitThreshold == nil {
		return 0.5
	}
	return *c.SplitThreshold
}

// GetClassifyEpsilon returns the classify_epsilon value or the default.
func (c *RoomConfig) GetClassifyEpsilon() float64 {
	if c.ClassifyEpsilon == nil {
		return geom.DefaultEpsilon
	}
	return *c.ClassifyEpsilon
}

// GetDisabledWalls returns a copy of disabled_walls.
func (c *RoomConfig) GetDisabledWalls() []int {
	return append([]int(nil), c.DisabledWalls...)
}

// WithThreshold returns a copy of c with SplitThreshold set.
func (c *RoomConfig) WithThreshold(v float64) *RoomConfig {
	out := *c
	out.SplitThreshold = ptrFloat64(v)
	out.DisabledWalls = c.GetDisabledWalls()
	return &out
}
