package meshdiff

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ICPConfig scales registration parameters by the reference mesh's bounding
// box diagonal.
type ICPConfig struct {
	SamplingFactor      float64 `yaml:"sampling_factor" toml:"sampling_factor" json:"sampling_factor"`
	DistThresholdFactor float64 `yaml:"dist_threshold_factor" toml:"dist_threshold_factor" json:"dist_threshold_factor"`
	ExitFactor          float64 `yaml:"exit_factor" toml:"exit_factor" json:"exit_factor"`
	IterLimit           int     `yaml:"iter_limit" toml:"iter_limit" json:"iter_limit"`
}

// Config holds every tunable parameter of a pipeline run.
type Config struct {
	// OutputDir holds the artifacts. Empty means the ideal mesh's directory.
	OutputDir string `yaml:"output_dir" toml:"output_dir" json:"output_dir"`

	// Name is the artifact base name. It defaults to the ideal mesh's stem.
	Name string `yaml:"name" toml:"name" json:"name"`

	// Format is the artifact file extension, without a dot.
	Format string `yaml:"format" toml:"format" json:"format"`

	VoxelSize float64 `yaml:"voxel_size" toml:"voxel_size" json:"voxel_size"`
	Decimate  bool    `yaml:"decimate" toml:"decimate" json:"decimate"`

	// CombineVoxelSize is the boolean resolution. Zero means VoxelSize.
	CombineVoxelSize float64 `yaml:"combine_voxel_size" toml:"combine_voxel_size" json:"combine_voxel_size"`

	ICP ICPConfig `yaml:"icp" toml:"icp" json:"icp"`

	GlobalRegistration bool `yaml:"global_registration" toml:"global_registration" json:"global_registration"`

	// Chop, if non-nil, restricts the result to a working volume.
	Chop *WorkingVolume `yaml:"chop" toml:"chop" json:"chop"`

	// SanityFactor bounds the alignment translation, in units of the
	// reference diagonal, before the alignment is flagged as suspect.
	SanityFactor float64 `yaml:"sanity_factor" toml:"sanity_factor" json:"sanity_factor"`

	LogFormat string `yaml:"log_format" toml:"log_format" json:"log_format"`
	Verbose   bool   `yaml:"verbose" toml:"verbose" json:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Format:    "stl",
		VoxelSize: DefaultVoxelSize,
		ICP: ICPConfig{
			SamplingFactor:      0.01,
			DistThresholdFactor: 0.1,
			ExitFactor:          0.003,
			IterLimit:           DefaultICPIterLimit,
		},
		SanityFactor: 3,
		LogFormat:    "text",
	}
}

// LoadConfig reads a YAML, TOML, or JSON file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(c)
	default:
		return nil, errors.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode config "+path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// EffectiveCombineVoxelSize returns the voxel size used for booleans.
func (c *Config) EffectiveCombineVoxelSize() float64 {
	if c.CombineVoxelSize > 0 {
		return c.CombineVoxelSize
	}
	return c.VoxelSize
}

// Validate checks that every parameter is in range.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Name, `/\`) {
		return errors.Errorf("config: name %q contains a path separator", c.Name)
	}
	if !SupportedFormat("x." + strings.TrimPrefix(c.Format, ".")) {
		return errors.Errorf("config: unsupported format %q", c.Format)
	}
	if !(c.VoxelSize > 0) {
		return errors.Errorf("config: voxel_size must be positive, got %f", c.VoxelSize)
	}
	if c.CombineVoxelSize < 0 {
		return errors.Errorf("config: combine_voxel_size must not be negative, got %f",
			c.CombineVoxelSize)
	}
	if !(c.ICP.SamplingFactor > 0) || !(c.ICP.DistThresholdFactor > 0) || !(c.ICP.ExitFactor > 0) {
		return errors.Errorf("config: icp factors must be positive, got %+v", c.ICP)
	}
	if c.ICP.IterLimit < 0 {
		return errors.Errorf("config: icp iter_limit must not be negative, got %d", c.ICP.IterLimit)
	}
	if !(c.SanityFactor > 0) {
		return errors.Errorf("config: sanity_factor must be positive, got %f", c.SanityFactor)
	}
	if c.Chop != nil && !(c.Chop.Size > 0) {
		return errors.Errorf("config: chop size must be positive, got %f", c.Chop.Size)
	}
	switch c.LogFormat {
	case "", "text", "logfmt", "json":
	default:
		return errors.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}
