package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DiagnosticCategory classifies a validation finding.
type DiagnosticCategory string

const (
	CategoryConnectivity  DiagnosticCategory = "connectivity"
	CategorySpecification DiagnosticCategory = "specification"
	CategoryComposition   DiagnosticCategory = "composition"
	CategoryParameter     DiagnosticCategory = "parameter"
)

// Severity of a validation finding. Warnings never block solving.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one validation finding.
type Diagnostic struct {
	Category DiagnosticCategory `json:"category"`
	Severity Severity           `json:"severity"`
	BlockID  string             `json:"block_id,omitempty"`
	StreamID string             `json:"stream_id,omitempty"`
	Message  string             `json:"message"`
}

// ValidationResult is the full pre-flight report. Valid means zero
// error-severity diagnostics; warnings are advisory.
type ValidationResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Valid       bool         `json:"valid"`
}

// compositionTolerance bounds the allowed deviation of a feed
// composition sum from 1.0.
const compositionTolerance = 0.01

// Validate runs the read-only structural and specification checks over a
// project. It never mutates the flowsheet and performs no solving.
func Validate(p *Project) ValidationResult {
	var diags []Diagnostic
	add := func(d Diagnostic) { diags = append(diags, d) }

	fs := p.Flowsheet
	if fs == nil || len(fs.Blocks) == 0 {
		add(Diagnostic{Category: CategoryConnectivity, Severity: SeverityError,
			Message: "flowsheet is empty: add at least one block"})
	}
	if len(p.Components) == 0 {
		add(Diagnostic{Category: CategorySpecification, Severity: SeverityError,
			Message: "no components declared in the project"})
	}
	if fs == nil {
		return ValidationResult{Diagnostics: diags, Valid: false}
	}

	if err := fs.CheckRefs(); err != nil {
		add(Diagnostic{Category: CategoryConnectivity, Severity: SeverityError, Message: err.Error()})
	}

	for _, b := range fs.Blocks {
		validateBlock(fs, b, add)
	}

	valid := true
	for _, d := range diags {
		if d.Severity == SeverityError {
			valid = false
			break
		}
	}
	return ValidationResult{Diagnostics: diags, Valid: valid}
}

// validateBlock applies the per-type parameter checks.
func validateBlock(fs *Flowsheet, b *Block, add func(Diagnostic)) {
	inlets := fs.Inlets(b.ID)
	outlets := fs.Outlets(b.ID)

	if b.IsProcess() && len(inlets) == 0 && len(outlets) == 0 {
		add(Diagnostic{Category: CategoryConnectivity, Severity: SeverityWarning, BlockID: b.ID,
			Message: fmt.Sprintf("block %s (%s) is not connected to any stream", b.ID, b.Type)})
	}

	switch b.Type {
	case BlockFeed:
		validateFeed(b, outlets, add)

	case BlockFlash, BlockSeparator:
		if len(inlets) < 1 {
			add(Diagnostic{Category: CategoryConnectivity, Severity: SeverityError, BlockID: b.ID,
				Message: fmt.Sprintf("block %s (%s) needs at least one inlet", b.ID, b.Type)})
		}
		if len(outlets) < 2 {
			add(Diagnostic{Category: CategoryConnectivity, Severity: SeverityError, BlockID: b.ID,
				Message: fmt.Sprintf("block %s (%s) needs at least two outlets (vapor and liquid)", b.ID, b.Type)})
		}

	case BlockPump:
		if _, ok := b.Param("pressure_rise"); !ok {
			add(Diagnostic{Category: CategoryParameter, Severity: SeverityWarning, BlockID: b.ID,
				Message: fmt.Sprintf("pump %s has no pressure_rise parameter; default %.0f bar will be used", b.ID, defaultPressureRise)})
		}

	case BlockCompressor:
		_, hasOut := b.Param("outlet_pressure")
		_, hasRatio := b.Param("pressure_ratio")
		if !hasOut && !hasRatio {
			add(Diagnostic{Category: CategoryParameter, Severity: SeverityError, BlockID: b.ID,
				Message: fmt.Sprintf("compressor %s needs an outlet_pressure or pressure_ratio parameter", b.ID)})
		}

	case BlockHeater, BlockCooler:
		_, hasDuty := b.Param("duty")
		_, hasTemp := b.Param("outlet_temperature")
		if !hasDuty && !hasTemp {
			add(Diagnostic{Category: CategoryParameter, Severity: SeverityError, BlockID: b.ID,
				Message: fmt.Sprintf("block %s (%s) needs a duty or outlet_temperature parameter", b.ID, b.Type)})
		}

	case BlockAbsorber, BlockStripper, BlockColumn:
		stages, ok := b.Param("stages")
		n, isCount := 0, false
		if ok {
			n, isCount = stages.AsInt()
		}
		if !ok || !isCount || n <= 0 {
			add(Diagnostic{Category: CategoryParameter, Severity: SeverityError, BlockID: b.ID,
				Message: fmt.Sprintf("column %s (%s) needs a positive integer stages parameter", b.ID, b.Type)})
		}
	}
}

// validateFeed checks that every Feed outlet carries a complete design
// spec with a closed composition.
func validateFeed(b *Block, outlets []*Stream, add func(Diagnostic)) {
	if len(outlets) == 0 {
		add(Diagnostic{Category: CategorySpecification, Severity: SeverityError, BlockID: b.ID,
			Message: fmt.Sprintf("feed %s has no outlet stream", b.ID)})
		return
	}
	for _, s := range outlets {
		if s.Feed == nil {
			add(Diagnostic{Category: CategorySpecification, Severity: SeverityError, BlockID: b.ID, StreamID: s.ID,
				Message: fmt.Sprintf("feed outlet %s has no design specification", s.ID)})
			continue
		}
		spec := s.Feed
		if spec.MolarFlow <= 0 {
			add(Diagnostic{Category: CategorySpecification, Severity: SeverityError, BlockID: b.ID, StreamID: s.ID,
				Message: fmt.Sprintf("feed stream %s must specify a molar flow > 0", s.ID)})
		}
		if spec.Temperature == 0 {
			add(Diagnostic{Category: CategorySpecification, Severity: SeverityError, BlockID: b.ID, StreamID: s.ID,
				Message: fmt.Sprintf("feed stream %s must specify a temperature", s.ID)})
		}
		if spec.Pressure == 0 {
			add(Diagnostic{Category: CategorySpecification, Severity: SeverityError, BlockID: b.ID, StreamID: s.ID,
				Message: fmt.Sprintf("feed stream %s must specify a pressure", s.ID)})
		}
		fracs := make([]float64, 0, len(spec.Composition))
		for _, frac := range spec.Composition {
			fracs = append(fracs, frac)
		}
		sum := floats.Sum(fracs)
		if math.Abs(sum-1.0) > compositionTolerance {
			add(Diagnostic{Category: CategoryComposition, Severity: SeverityError, BlockID: b.ID, StreamID: s.ID,
				Message: fmt.Sprintf("feed stream %s composition sums to %.4f, expected 1.0 +/- %.2f", s.ID, sum, compositionTolerance)})
		}
	}
}
