package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/flowsheet-sim/flowsheet-sim/sim"
	"github.com/flowsheet-sim/flowsheet-sim/sim/costing"
	"github.com/flowsheet-sim/flowsheet-sim/sim/thermo"
)

// ProjectConfig is the YAML project schema the CLI consumes. The
// project-management collaborator produces the same shape.
type ProjectConfig struct {
	Name        string                         `yaml:"name"`
	Components  []ComponentRef                 `yaml:"components"`
	Blocks      []BlockConfig                  `yaml:"blocks"`
	Streams     []StreamConfig                 `yaml:"streams"`
	Specs       []SpecConfig                   `yaml:"specs"`
	Constraints []ConstraintConfig             `yaml:"constraints"`
	Economics   costing.ExtendedEconomicConfig `yaml:"economics"`
}

// ComponentRef names a built-in component or embeds a full property
// record for species outside the registry.
type ComponentRef struct {
	ID     string            `yaml:"id"`
	Record *thermo.Component `yaml:"record,omitempty"`
}

// BlockConfig is one unit operation.
type BlockConfig struct {
	ID     string                 `yaml:"id"`
	Name   string                 `yaml:"name,omitempty"`
	Type   string                 `yaml:"type"`
	Params map[string]ParamConfig `yaml:"params,omitempty"`
	Ports  []PortConfig           `yaml:"ports,omitempty"`
}

// PortConfig declares a named directional port.
type PortConfig struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
	Phase     string `yaml:"phase,omitempty"`
}

// ParamConfig decodes the three block parameter shapes from YAML:
// a bare scalar is a plain number, {value, unit} is a quantity, and
// {count} is an integer count.
type ParamConfig struct {
	kind  sim.ParamKind
	num   float64
	value float64
	unit  string
	count int
}

// UnmarshalYAML implements yaml.Unmarshaler for the three shapes.
func (p *ParamConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("parameter: %w", err)
		}
		p.kind = sim.ParamNumber
		p.num = v
		return nil
	}
	var body struct {
		Value *float64 `yaml:"value"`
		Unit  string   `yaml:"unit"`
		Count *int     `yaml:"count"`
	}
	if err := node.Decode(&body); err != nil {
		return fmt.Errorf("parameter: %w", err)
	}
	switch {
	case body.Count != nil:
		p.kind = sim.ParamCount
		p.count = *body.Count
	case body.Value != nil:
		p.kind = sim.ParamQuantity
		p.value = *body.Value
		p.unit = body.Unit
	default:
		return fmt.Errorf("parameter: expected a scalar, {value, unit}, or {count}")
	}
	return nil
}

// toParam converts the decoded shape into the sim sum type.
func (p ParamConfig) toParam() sim.ParamValue {
	switch p.kind {
	case sim.ParamQuantity:
		return sim.Quantity(p.value, p.unit)
	case sim.ParamCount:
		return sim.Count(p.count)
	default:
		return sim.Number(p.num)
	}
}

// StreamConfig is one edge, optionally carrying a feed design spec.
type StreamConfig struct {
	ID       string      `yaml:"id"`
	From     string      `yaml:"from"`
	FromPort string      `yaml:"from_port"`
	To       string      `yaml:"to"`
	ToPort   string      `yaml:"to_port"`
	Feed     *FeedConfig `yaml:"feed,omitempty"`
}

// QuantityConfig is a value with a unit.
type QuantityConfig struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

// FeedConfig is the design specification of a Feed-sourced stream.
type FeedConfig struct {
	Temperature QuantityConfig     `yaml:"temperature"`
	Pressure    QuantityConfig     `yaml:"pressure"`
	MolarFlow   float64            `yaml:"molar_flow"` // kmol/h
	Composition map[string]float64 `yaml:"composition"`
	Phase       string             `yaml:"phase,omitempty"`
}

// SpecConfig is a design target.
type SpecConfig struct {
	ID        string  `yaml:"id"`
	Type      string  `yaml:"type"` // capture | purity | recovery
	Target    float64 `yaml:"target"`
	Component string  `yaml:"component,omitempty"`
	Stream    string  `yaml:"stream,omitempty"`
}

// MetricRefConfig points at a stream property, unit parameter, or KPI.
type MetricRefConfig struct {
	Kind     string `yaml:"kind"` // stream | unit | kpi
	Stream   string `yaml:"stream,omitempty"`
	Property string `yaml:"property,omitempty"`
	Block    string `yaml:"block,omitempty"`
	Param    string `yaml:"param,omitempty"`
	KPI      string `yaml:"kpi,omitempty"`
}

// ConstraintConfig is a bound on a metric reference.
type ConstraintConfig struct {
	ID     string          `yaml:"id"`
	Metric MetricRefConfig `yaml:"metric"`
	Type   string          `yaml:"type"` // max | min | range
	Limit  float64         `yaml:"limit,omitempty"`
	Low    float64         `yaml:"low,omitempty"`
	High   float64         `yaml:"high,omitempty"`
	Hard   bool            `yaml:"hard,omitempty"`
}

// LoadProject reads and converts a YAML project file.
func LoadProject(path string) (*sim.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return cfg.ToProject()
}

// ToProject converts the YAML schema into the engine's structures.
func (cfg *ProjectConfig) ToProject() (*sim.Project, error) {
	components := make([]thermo.Component, 0, len(cfg.Components))
	for _, ref := range cfg.Components {
		if ref.Record != nil {
			components = append(components, *ref.Record)
			continue
		}
		c, ok := thermo.Lookup(ref.ID)
		if !ok {
			return nil, fmt.Errorf("component %q: not a built-in id and no record given (built-ins: %v)", ref.ID, thermo.BuiltinIDs())
		}
		components = append(components, c)
	}

	blocks := make([]*sim.Block, 0, len(cfg.Blocks))
	for _, bc := range cfg.Blocks {
		params := make(map[string]sim.ParamValue, len(bc.Params))
		for name, pc := range bc.Params {
			params[name] = pc.toParam()
		}
		ports := make([]sim.Port, 0, len(bc.Ports))
		for _, pc := range bc.Ports {
			ports = append(ports, sim.Port{
				Name:      pc.Name,
				Direction: sim.PortDirection(pc.Direction),
				Phase:     sim.Phase(pc.Phase),
			})
		}
		blocks = append(blocks, &sim.Block{
			ID:     bc.ID,
			Name:   bc.Name,
			Type:   sim.BlockType(bc.Type),
			Params: params,
			Ports:  ports,
		})
	}

	streams := make([]*sim.Stream, 0, len(cfg.Streams))
	for _, sc := range cfg.Streams {
		st := &sim.Stream{
			ID:       sc.ID,
			From:     sc.From,
			FromPort: sc.FromPort,
			To:       sc.To,
			ToPort:   sc.ToPort,
		}
		if sc.Feed != nil {
			st.Feed = &sim.FeedSpec{
				Temperature: sc.Feed.Temperature.Value,
				TempUnit:    sc.Feed.Temperature.Unit,
				Pressure:    sc.Feed.Pressure.Value,
				PresUnit:    sc.Feed.Pressure.Unit,
				MolarFlow:   sc.Feed.MolarFlow,
				Composition: sc.Feed.Composition,
				Phase:       sim.Phase(sc.Feed.Phase),
			}
		}
		streams = append(streams, st)
	}

	specs := make([]sim.Spec, 0, len(cfg.Specs))
	for _, s := range cfg.Specs {
		specs = append(specs, sim.Spec{
			ID:          s.ID,
			Type:        sim.SpecType(s.Type),
			Target:      s.Target,
			ComponentID: s.Component,
			StreamID:    s.Stream,
		})
	}

	constraints := make([]sim.Constraint, 0, len(cfg.Constraints))
	for _, c := range cfg.Constraints {
		constraints = append(constraints, sim.Constraint{
			ID: c.ID,
			Metric: sim.MetricRef{
				Kind:     sim.MetricKind(c.Metric.Kind),
				StreamID: c.Metric.Stream,
				Property: c.Metric.Property,
				BlockID:  c.Metric.Block,
				Param:    c.Metric.Param,
				KPI:      c.Metric.KPI,
			},
			Type:  sim.ConstraintType(c.Type),
			Limit: c.Limit,
			Low:   c.Low,
			High:  c.High,
			Hard:  c.Hard,
		})
	}

	return &sim.Project{
		Name:        cfg.Name,
		Components:  components,
		Flowsheet:   sim.NewFlowsheet(blocks, streams),
		Specs:       specs,
		Constraints: constraints,
		Economics:   cfg.Economics,
	}, nil
}
