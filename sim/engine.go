package sim

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowsheet-sim/flowsheet-sim/sim/costing"
)

// RunStatus is the terminal status of an engine invocation.
type RunStatus string

const (
	RunDone  RunStatus = "done"
	RunError RunStatus = "error"
)

// RunRecord is the immutable output of one engine invocation. Ownership
// passes to the persistence collaborator, which may re-assign identity
// and attaches timestamps.
type RunRecord struct {
	ID        string    `json:"id"`
	VersionID string    `json:"version_id,omitempty"`
	Project   string    `json:"project"`
	Status    RunStatus `json:"status"`
	Converged bool      `json:"converged"`
	Error     string    `json:"error,omitempty"`

	Diagnostics []Diagnostic       `json:"diagnostics,omitempty"`
	KPIs        map[string]float64 `json:"kpis,omitempty"`
	SpecResults []SpecResult       `json:"spec_results,omitempty"`
	Violations  []Violation        `json:"violations,omitempty"`

	CAPEX     costing.CAPEXResult         `json:"capex"`
	Economics costing.AnnualCostBreakdown `json:"economics"`
	COM       float64                     `json:"com"`

	// Raw solver tables, for inspection by the persistence collaborator.
	Streams map[string]StreamState `json:"streams,omitempty"`
	Blocks  map[string]BlockResult `json:"blocks,omitempty"`
}

// Run is the full pipeline: validate, solve, evaluate KPIs, specs and
// constraints, then size equipment and aggregate economics. Every
// failure is captured in the returned record; Run never panics across
// its API and never reports a partial solve as done.
func Run(p *Project, versionID string) *RunRecord {
	rec := &RunRecord{
		ID:        uuid.NewString(),
		VersionID: versionID,
		Project:   p.Name,
	}

	logrus.Infof("run %s: validating project %q", rec.ID, p.Name)
	validation := Validate(p)
	rec.Diagnostics = validation.Diagnostics
	if !validation.Valid {
		rec.Status = RunError
		rec.Error = "validation failed"
		logrus.Warnf("run %s: validation failed with %d diagnostics", rec.ID, len(validation.Diagnostics))
		return rec
	}

	logrus.Infof("run %s: solving flowsheet (%d blocks, %d streams)",
		rec.ID, len(p.Flowsheet.Blocks), len(p.Flowsheet.Streams))
	sr := Solve(p)
	rec.Streams = sr.Streams
	rec.Blocks = sr.Blocks
	rec.Converged = sr.Converged
	if !sr.Converged {
		rec.Status = RunError
		rec.Error = sr.Err
		logrus.Warnf("run %s: solve failed: %s", rec.ID, sr.Err)
		return rec
	}

	rec.KPIs = ComputeKPIs(p, sr)
	rec.SpecResults = EvaluateSpecs(p, sr, rec.KPIs)
	rec.Violations = EvaluateConstraints(p.Constraints, NewResolver(p, sr, rec.KPIs))

	econ := p.Economics.WithDefaults()
	rec.CAPEX = SizeEquipment(p, sr)
	rec.Economics = costing.TotalAnnualCost(rec.CAPEX.Total, rec.KPIs, econ)
	rec.COM = costing.COM(rec.KPIs, econ.EconomicConfig)

	rec.Status = RunDone
	logrus.Infof("run %s: done, %d spec results, %d violations", rec.ID, len(rec.SpecResults), len(rec.Violations))
	return rec
}
