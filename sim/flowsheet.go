package sim

import "fmt"

// BlockType tags a unit operation with its balance model.
type BlockType string

const (
	BlockFeed       BlockType = "Feed"
	BlockFlash      BlockType = "Flash"
	BlockSeparator  BlockType = "Separator"
	BlockMixer      BlockType = "Mixer"
	BlockSplitter   BlockType = "Splitter"
	BlockPump       BlockType = "Pump"
	BlockCompressor BlockType = "Compressor"
	BlockHeater     BlockType = "Heater"
	BlockCooler     BlockType = "Cooler"
	BlockAbsorber   BlockType = "Absorber"
	BlockStripper   BlockType = "Stripper"
	BlockColumn     BlockType = "DistillationColumn"
	BlockReactor    BlockType = "Reactor"
	BlockValve      BlockType = "Valve"
	BlockSink       BlockType = "Sink"
	BlockAnnotation BlockType = "Annotation"
)

// Phase tags the aggregation state of a stream.
type Phase string

const (
	PhaseVapor  Phase = "V"
	PhaseLiquid Phase = "L"
	PhaseMixed  Phase = "VL"
)

// PortDirection distinguishes inlet from outlet ports.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// Port is a named connection point on a block.
type Port struct {
	Name      string
	Direction PortDirection
	Phase     Phase // default phase tag for streams attached here
}

// Block is a unit operation node. It carries only design-time data;
// run-scoped state (status, populated inlets, duty, power) lives in the
// active run's context so that no state leaks across runs.
type Block struct {
	ID     string
	Name   string
	Type   BlockType
	Params map[string]ParamValue
	Ports  []Port
}

// Param returns the named parameter, reporting presence.
func (b *Block) Param(name string) (ParamValue, bool) {
	p, ok := b.Params[name]
	return p, ok
}

// HasPort reports whether the block declares a port with the given name
// and direction.
func (b *Block) HasPort(name string, dir PortDirection) bool {
	for _, p := range b.Ports {
		if p.Name == name && p.Direction == dir {
			return true
		}
	}
	return false
}

// OutPorts returns the block's outlet ports in declaration order.
func (b *Block) OutPorts() []Port {
	var out []Port
	for _, p := range b.Ports {
		if p.Direction == PortOut {
			out = append(out, p)
		}
	}
	return out
}

// IsProcess reports whether the block participates in sequencing.
// Annotations and sinks carry no balance model.
func (b *Block) IsProcess() bool {
	return b.Type != BlockAnnotation && b.Type != BlockSink
}

// FeedSpec is the design specification a Feed-sourced stream carries.
type FeedSpec struct {
	Temperature float64 // value in TemperatureUnit
	TempUnit    string
	Pressure    float64 // value in PressureUnit
	PresUnit    string
	MolarFlow   float64 // kmol/h
	Composition map[string]float64
	Phase       Phase
}

// Stream connects one block's outlet port to another block's inlet port.
type Stream struct {
	ID       string
	From     string // source block id
	FromPort string
	To       string // destination block id
	ToPort   string
	Feed     *FeedSpec // non-nil only for Feed-sourced streams
}

// StreamState is the solved condition of a stream.
type StreamState struct {
	Temperature float64 // K
	Pressure    float64 // bar
	MolarFlow   float64 // kmol/h, >= 0
	Composition map[string]float64
	Phase       Phase
	Enthalpy    float64 // kJ/mol
}

// CloneComposition returns a copy of the state's composition map.
func (s StreamState) CloneComposition() map[string]float64 {
	out := make(map[string]float64, len(s.Composition))
	for k, v := range s.Composition {
		out[k] = v
	}
	return out
}

// Flowsheet is the directed graph of blocks and streams.
type Flowsheet struct {
	Blocks  []*Block
	Streams []*Stream

	byID map[string]*Block
}

// NewFlowsheet builds a flowsheet and its block index.
func NewFlowsheet(blocks []*Block, streams []*Stream) *Flowsheet {
	fs := &Flowsheet{Blocks: blocks, Streams: streams, byID: make(map[string]*Block, len(blocks))}
	for _, b := range blocks {
		fs.byID[b.ID] = b
	}
	return fs
}

// Block looks up a block by id.
func (fs *Flowsheet) Block(id string) (*Block, bool) {
	b, ok := fs.byID[id]
	return b, ok
}

// Inlets returns the streams terminating at the given block.
func (fs *Flowsheet) Inlets(blockID string) []*Stream {
	var in []*Stream
	for _, s := range fs.Streams {
		if s.To == blockID {
			in = append(in, s)
		}
	}
	return in
}

// Outlets returns the streams originating at the given block.
func (fs *Flowsheet) Outlets(blockID string) []*Stream {
	var out []*Stream
	for _, s := range fs.Streams {
		if s.From == blockID {
			out = append(out, s)
		}
	}
	return out
}

// CheckRefs verifies the structural invariant that every stream endpoint
// names an existing block. Port names are checked only when the block
// declares ports at all (port lists are optional on imported projects).
func (fs *Flowsheet) CheckRefs() error {
	for _, s := range fs.Streams {
		from, ok := fs.byID[s.From]
		if !ok {
			return fmt.Errorf("stream %s: unknown source block %q", s.ID, s.From)
		}
		to, ok := fs.byID[s.To]
		if !ok {
			return fmt.Errorf("stream %s: unknown destination block %q", s.ID, s.To)
		}
		if len(from.Ports) > 0 && !from.HasPort(s.FromPort, PortOut) {
			return fmt.Errorf("stream %s: block %s has no outlet port %q", s.ID, from.ID, s.FromPort)
		}
		if len(to.Ports) > 0 && !to.HasPort(s.ToPort, PortIn) {
			return fmt.Errorf("stream %s: block %s has no inlet port %q", s.ID, to.ID, s.ToPort)
		}
	}
	return nil
}
