package config

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a NavigationConfig, unmarshalled by
// viper/yaml.v3. Zero-valued fields fall back to the compiled-in default.
type FileConfig struct {
	CellSize            float32 `mapstructure:"cell_size" yaml:"cell_size"`
	ChunkCellCount      int     `mapstructure:"chunk_cell_count" yaml:"chunk_cell_count"`
	ActiveRingRadius    int     `mapstructure:"active_ring_radius" yaml:"active_ring_radius"`
	GhostRingRadius     int     `mapstructure:"ghost_ring_radius" yaml:"ghost_ring_radius"`
	AgentRadius         float32 `mapstructure:"agent_radius" yaml:"agent_radius"`
	MaxSlopeAngleDeg    float32 `mapstructure:"max_slope_angle" yaml:"max_slope_angle"`
	BakeRaycastHeight   float32 `mapstructure:"bake_raycast_height" yaml:"bake_raycast_height"`
	MaxRequestsPerFrame int     `mapstructure:"max_requests_per_frame" yaml:"max_requests_per_frame"`
}

// LoadFile reads a YAML config file via viper and applies non-zero fields
// onto the global NavigationConfig. A file that cannot be read or parsed is
// an error; missing keys are not: those fields keep their current values.
func LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	c := Global()
	if fc.CellSize > 0 {
		c.SetCellSize(fc.CellSize)
	}
	if fc.ChunkCellCount > 0 {
		c.SetChunkCellCount(fc.ChunkCellCount)
	}
	if fc.ActiveRingRadius > 0 {
		c.SetActiveRingRadius(fc.ActiveRingRadius)
	}
	if fc.GhostRingRadius > 0 {
		c.SetGhostRingRadius(fc.GhostRingRadius)
	}
	if fc.AgentRadius > 0 {
		c.SetAgentRadius(fc.AgentRadius)
	}
	if fc.MaxRequestsPerFrame > 0 {
		c.SetMaxRequestsPerFrame(fc.MaxRequestsPerFrame)
	}
	if fc.MaxSlopeAngleDeg > 0 {
		c.SetMaxSlopeAngleDeg(fc.MaxSlopeAngleDeg)
	}
	if fc.BakeRaycastHeight > 0 {
		c.SetBakeRaycastHeight(fc.BakeRaycastHeight)
	}
	return nil
}

// Dump renders the effective configuration as YAML, for startup logging.
func Dump() (string, error) {
	c := Global()
	fc := FileConfig{
		CellSize:            c.CellSize(),
		ChunkCellCount:      c.ChunkCellCount(),
		ActiveRingRadius:    c.ActiveRingRadius(),
		GhostRingRadius:     c.GhostRingRadius(),
		AgentRadius:         c.AgentRadius(),
		MaxSlopeAngleDeg:    c.MaxSlopeAngleDeg(),
		BakeRaycastHeight:   c.BakeRaycastHeight(),
		MaxRequestsPerFrame: c.MaxRequestsPerFrame(),
	}
	out, err := yaml.Marshal(&fc)
	if err != nil {
		return "", fmt.Errorf("config: dump: %w", err)
	}
	return string(out), nil
}
