package meshdiff

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// Process exit codes for the outcomes of a run.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitLoad    = 2
	ExitRebuild = 3
	ExitCombine = 4
	ExitSave    = 5
)

// A Stage is one step of the pipeline.
type Stage int

const (
	StageLoad Stage = iota + 1
	StageRepair
	StageAlign
	StageCombine
	StageSave
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageRepair:
		return "repair"
	case StageAlign:
		return "align"
	case StageCombine:
		return "combine"
	case StageSave:
		return "save"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// State is the progress of a Run. States only move forward, and a failed run
// records the stage that failed in Run.FailedStage.
type State int

const (
	StateInit State = iota
	StateLoaded
	StateRepaired
	StateAligned
	StateCombined
	StateSaved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoaded:
		return "loaded"
	case StateRepaired:
		return "repaired"
	case StateAligned:
		return "aligned"
	case StateCombined:
		return "combined"
	case StateSaved:
		return "saved"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Hooks are called around every stage. Either may be nil.
type Hooks struct {
	BeforeStage func(r *Run, s Stage)
	AfterStage  func(r *Run, s Stage, err error)
}

// A Run is the record of one pipeline invocation.
type Run struct {
	ID         uuid.UUID
	IdealPath  string
	DefectPath string

	// Ideal and Defect are the in-flight meshes. They are nil until both
	// inputs load, and are replaced as stages produce new meshes.
	Ideal  *model3d.Mesh
	Defect *model3d.Mesh

	// Result is the boolean output, set once combination succeeds.
	Result *model3d.Mesh

	State       State
	FailedStage Stage
	Err         error

	// HolesFilled counts fill operations for the ideal and defect meshes.
	HolesFilled [2]int

	Global RigidTransform
	Local  RigidTransform

	// AlignmentSuspect is set when the alignment moved the defect further
	// than Config.SanityFactor reference diagonals.
	AlignmentSuspect bool

	// Artifacts lists the files written, in order.
	Artifacts []string
}

// ExitCode maps the outcome of the run to a process exit code.
func (r *Run) ExitCode() int {
	switch r.State {
	case StateSaved:
		return ExitOK
	case StateFailed:
		switch KindOf(r.Err) {
		case LoadError:
			return ExitLoad
		case RebuildError:
			return ExitRebuild
		case CombineError:
			return ExitCombine
		case SaveError:
			return ExitSave
		}
	}
	return ExitUsage
}

// Pipeline repairs, aligns, and compares an ideal mesh with a defect mesh.
//
// Stages run strictly in order on the calling goroutine. Every collaborator
// may be replaced before calling Run.
type Pipeline struct {
	Config *Config

	IO            MeshIO
	Holes         HoleRepairer
	Metric        FillMetric
	Rebuilder     Rebuilder
	Aligner       Aligner
	GlobalAligner GlobalAligner
	Combiner      Combiner

	Hooks Hooks
	Log   *Reporter
}

// NewPipeline creates a pipeline with the default collaborators.
func NewPipeline(c *Config, log *Reporter) *Pipeline {
	if log == nil {
		log = DiscardReporter()
	}
	icp := &ICPAligner{Log: log}
	return &Pipeline{
		Config:        c,
		IO:            &STLIO{Log: log},
		Holes:         LoopFiller{},
		Metric:        UniversalMetric{},
		Rebuilder:     VoxelRebuilder{},
		Aligner:       icp,
		GlobalAligner: &PCAGlobalAligner{Local: icp},
		Combiner:      &SolidCombiner{VoxelSize: c.EffectiveCombineVoxelSize()},
		Log:           log,
	}
}

// Run processes one pair of meshes. It never panics on collaborator
// failures; the outcome is described by the returned Run.
func (p *Pipeline) Run(idealPath, defectPath string) *Run {
	r := &Run{
		ID:         uuid.New(),
		IdealPath:  idealPath,
		DefectPath: defectPath,
		Global:     IdentityTransform(),
		Local:      IdentityTransform(),
	}
	log := p.Log.With("run", r.ID.String()[:8])
	artifacts := NewArtifacts(p.Config, idealPath)
	if err := artifacts.Validate(idealPath, defectPath); err != nil {
		p.fail(log, r, StageSave, newError(SaveError, "", err, "invalid output paths"))
		return r
	}

	ok := p.stage(log, r, StageLoad, func() error {
		return p.load(log, r)
	}) && p.stage(log, r, StageRepair, func() error {
		return p.repair(log, r, artifacts)
	}) && p.stage(log, r, StageAlign, func() error {
		return p.align(log, r, artifacts)
	}) && p.stage(log, r, StageCombine, func() error {
		return p.combine(log, r, artifacts)
	}) && p.stage(log, r, StageSave, func() error {
		path := artifacts.Boolean
		if p.Config.Chop != nil {
			path = artifacts.BooleanFiltered
		}
		log.Infof("Saving result (%d triangles)...", r.Result.NumTriangles())
		if err := p.save(log, r, r.Result, path); err != nil {
			return err
		}
		r.State = StateSaved
		return nil
	})
	if ok {
		log.Infof("Done: %s", r.Artifacts[len(r.Artifacts)-1])
	}
	return r
}

func (p *Pipeline) stage(log *Reporter, r *Run, s Stage, f func() error) bool {
	if p.Hooks.BeforeStage != nil {
		p.Hooks.BeforeStage(r, s)
	}
	log.Debugf("stage %s started", s)
	err := f()
	if p.Hooks.AfterStage != nil {
		p.Hooks.AfterStage(r, s, err)
	}
	if err != nil {
		p.fail(log, r, s, err)
		return false
	}
	return true
}

func (p *Pipeline) fail(log *Reporter, r *Run, s Stage, err error) {
	if KindOf(err) == SaveError {
		s = StageSave
	}
	r.State = StateFailed
	r.FailedStage = s
	r.Err = err
	if s == StageLoad {
		r.Ideal, r.Defect = nil, nil
	}
	log.Errorf("stage %s failed: %v", s, err)
}

func (p *Pipeline) load(log *Reporter, r *Run) error {
	log.Infof("Loading meshes...")
	ideal, idealErr := p.IO.Load(r.IdealPath)
	defect, defectErr := p.IO.Load(r.DefectPath)
	idealErr = asKind(idealErr, LoadError, r.IdealPath, "load mesh")
	defectErr = asKind(defectErr, LoadError, r.DefectPath, "load mesh")
	if idealErr != nil && defectErr != nil {
		// Both are reported; the run keeps the first.
		log.Errorf("%v", defectErr)
		return idealErr
	} else if idealErr != nil {
		return idealErr
	} else if defectErr != nil {
		return defectErr
	}
	log.Infof(" - ideal: %d triangles", ideal.NumTriangles())
	log.Infof(" - defect: %d triangles", defect.NumTriangles())
	r.Ideal, r.Defect = ideal, defect
	r.State = StateLoaded
	return nil
}

func (p *Pipeline) repair(log *Reporter, r *Run, a *Artifacts) error {
	settings := RebuildSettings{
		Decimate:  p.Config.Decimate,
		VoxelSize: p.Config.VoxelSize,
	}
	inputs := []struct {
		name string
		path string
		mesh **model3d.Mesh
	}{
		{"ideal", r.IdealPath, &r.Ideal},
		{"defect", r.DefectPath, &r.Defect},
	}
	for i, in := range inputs {
		log.Infof("Repairing %s mesh...", in.name)
		name := in.name
		settings.Progress = NewDecileProgress(func(percent int) {
			log.Infof(" - rebuilding %s: %d%%", name, percent)
		}).Func()
		repaired, filled, err := RepairMesh(*in.mesh, p.Holes, p.Metric, p.Rebuilder, settings,
			func(err error) {
				log.Warnf("%s: %v", in.name, err)
			})
		r.HolesFilled[i] = filled
		log.Infof(" - filled %d holes in %s", filled, in.name)
		if err != nil {
			return asKind(err, RebuildError, in.path, "rebuild mesh")
		}
		*in.mesh = repaired
	}
	r.State = StateRepaired

	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return newError(SaveError, a.Dir, err, "create output directory")
	}
	if err := p.save(log, r, r.Ideal, a.RepairedIdeal); err != nil {
		return err
	}
	return p.save(log, r, r.Defect, a.RepairedDefect)
}

// RepairMesh fills the holes of m and rebuilds it.
//
// Holes that cannot be filled are passed to onFillError, if it is non-nil,
// and left for the rebuild to close. The input mesh may be modified; the
// repaired mesh is always a new mesh.
func RepairMesh(m *model3d.Mesh, h HoleRepairer, metric FillMetric, rb Rebuilder,
	settings RebuildSettings, onFillError func(error)) (*model3d.Mesh, int, error) {
	filled, err := FillHoles(m, h, metric)
	if err != nil && onFillError != nil {
		onFillError(err)
	}
	rebuilt, err := rb.Rebuild(m, settings)
	if err != nil {
		return nil, filled, err
	}
	return rebuilt, filled, nil
}

func (p *Pipeline) align(log *Reporter, r *Run, a *Artifacts) error {
	diag := BoundingDiagonal(r.Ideal)
	voxel, params := DeriveICPParams(diag, p.Config.ICP)
	defect := r.Defect

	if p.Config.GlobalRegistration {
		log.Infof("Global registration...")
		xfs := p.GlobalAligner.GlobalAlign([]*model3d.Mesh{r.Ideal, defect}, voxel, params)
		if len(xfs) == 2 {
			r.Global = xfs[1]
		}
		log.Infof(" - global transform: %s", r.Global)
		defect = TransformMesh(defect, r.Global)
		r.Defect = defect
		if err := p.save(log, r, defect, a.GlobalAligned); err != nil {
			return err
		}
	}

	log.Infof("Local registration...")
	r.Local = p.Aligner.Align(defect, r.Ideal, voxel, params)
	log.Infof(" - local transform: %s", r.Local)
	total := r.Local.Compose(r.Global)
	if dist := total.Translation.Norm(); dist > p.Config.SanityFactor*diag {
		r.AlignmentSuspect = true
		log.Warnf("alignment moved defect by %f, more than %g times the diagonal %f",
			dist, p.Config.SanityFactor, diag)
	}
	r.Defect = TransformMesh(defect, r.Local)
	r.State = StateAligned
	return p.save(log, r, r.Defect, a.Aligned)
}

func (p *Pipeline) combine(log *Reporter, r *Run, a *Artifacts) error {
	log.Infof("Computing difference...")
	res := p.Combiner.Combine(r.Ideal, r.Defect, Difference)
	if !res.Valid {
		return newError(CombineError, "", nil, "difference: %s", res.ErrorString)
	}
	result := res.Mesh
	log.Infof(" - difference has %d triangles", result.NumTriangles())
	// An empty result could be written, but not loaded back as a mesh.
	if result.NumTriangles() == 0 {
		return newError(CombineError, "", nil, "difference is empty")
	}

	if p.Config.Chop != nil {
		log.Infof("Chopping to working volume...")
		volume := p.Config.Chop.Mesh()
		if err := p.save(log, r, volume, a.ChopArea); err != nil {
			return err
		}
		res = p.Combiner.Combine(volume, result, Intersection)
		if !res.Valid {
			return newError(CombineError, "", nil, "chop: %s", res.ErrorString)
		}
		result = res.Mesh
		if result.NumTriangles() == 0 {
			return newError(CombineError, "", nil, "difference lies outside the working volume")
		}
	}
	r.Result = result
	r.State = StateCombined
	return nil
}

func (p *Pipeline) save(log *Reporter, r *Run, m *model3d.Mesh, path string) error {
	if err := p.IO.Save(m, path); err != nil {
		return asKind(err, SaveError, path, "save mesh")
	}
	r.Artifacts = append(r.Artifacts, path)
	log.Infof(" - saved %s", path)
	return nil
}

// asKind makes sure a collaborator error carries an ErrorKind.
func asKind(err error, kind ErrorKind, path, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Path == "" {
			c := *e
			c.Path = path
			return &c
		}
		return err
	}
	return newError(kind, path, err, "%s", msg)
}
