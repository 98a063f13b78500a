package meshdiff

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	SuffixRepairedIdeal   = "_fillHoles_reBuild_ideal"
	SuffixRepairedDefect  = "_fillHoles_reBuild_defect"
	SuffixGlobalAligned   = "_fillHoles_reBuild_defect_icpg"
	SuffixAligned         = "_fillHoles_reBuild_defect_icp"
	SuffixChopArea        = "_chop_area"
	SuffixBoolean         = "_out_boolean"
	SuffixBooleanFiltered = "_out_boolean_filtered"
)

// Artifacts holds every path a run may write to.
type Artifacts struct {
	Dir string

	RepairedIdeal   string
	RepairedDefect  string
	GlobalAligned   string
	Aligned         string
	ChopArea        string
	Boolean         string
	BooleanFiltered string
}

// NewArtifacts derives output paths as <OutputDir>/<Name><suffix>.<Format>.
//
// If c.OutputDir is empty, artifacts go next to the ideal mesh. If c.Name is
// empty, the stem of the ideal mesh's file name is used, without
// a trailing "_ideal".
func NewArtifacts(c *Config, idealPath string) *Artifacts {
	name := c.Name
	if name == "" {
		name = DefaultName(idealPath)
	}
	format := strings.TrimPrefix(c.Format, ".")
	if format == "" {
		format = "stl"
	}
	dir := c.OutputDir
	if dir == "" {
		dir = filepath.Dir(idealPath)
	}
	path := func(suffix string) string {
		return filepath.Join(dir, name+suffix+"."+format)
	}
	return &Artifacts{
		Dir:             dir,
		RepairedIdeal:   path(SuffixRepairedIdeal),
		RepairedDefect:  path(SuffixRepairedDefect),
		GlobalAligned:   path(SuffixGlobalAligned),
		Aligned:         path(SuffixAligned),
		ChopArea:        path(SuffixChopArea),
		Boolean:         path(SuffixBoolean),
		BooleanFiltered: path(SuffixBooleanFiltered),
	}
}

// DefaultName is the artifact base name used for an ideal mesh path.
func DefaultName(idealPath string) string {
	base := filepath.Base(idealPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if trimmed := strings.TrimSuffix(stem, "_ideal"); trimmed != "" {
		return trimmed
	}
	return stem
}

// All returns every artifact path in the order a full run writes them.
func (a *Artifacts) All() []string {
	return []string{
		a.RepairedIdeal,
		a.RepairedDefect,
		a.GlobalAligned,
		a.Aligned,
		a.ChopArea,
		a.Boolean,
		a.BooleanFiltered,
	}
}

// Validate makes sure no artifact would overwrite an input.
func (a *Artifacts) Validate(inputs ...string) error {
	for _, in := range inputs {
		inAbs, err := filepath.Abs(in)
		if err != nil {
			return errors.Wrap(err, "resolve input path")
		}
		for _, out := range a.All() {
			outAbs, err := filepath.Abs(out)
			if err != nil {
				return errors.Wrap(err, "resolve output path")
			}
			if inAbs == outAbs {
				return errors.Errorf("artifact %s would overwrite input %s", out, in)
			}
		}
	}
	return nil
}
