package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// BlockStatus is the per-run execution state of a block.
type BlockStatus string

const (
	StatusIdle      BlockStatus = "idle"
	StatusComputing BlockStatus = "computing"
	StatusDone      BlockStatus = "done"
	StatusError     BlockStatus = "error"
)

// BlockResult is one block's solved summary.
type BlockResult struct {
	BlockID string      `json:"block_id"`
	Status  BlockStatus `json:"status"`
	DutyKW  float64     `json:"duty_kw"`  // positive = heating
	PowerKW float64     `json:"power_kw"` // shaft power
	Err     string      `json:"err,omitempty"`
}

// SolverResult carries the run-scoped tables out of a solve. On failure
// the tables hold whatever was solved before the first error; such a
// result is never reported as converged.
type SolverResult struct {
	Converged bool
	Streams   map[string]StreamState
	Blocks    map[string]BlockResult
	Err       string
}

// run owns the per-run mutable state: the stream and result tables plus
// the traversal status map. Created fresh for every solve and discarded
// at run end, so nothing leaks across runs.
type run struct {
	fs      *Flowsheet
	streams map[string]StreamState
	results map[string]BlockResult
	status  map[string]BlockStatus
}

func newRun(fs *Flowsheet) *run {
	return &run{
		fs:      fs,
		streams: make(map[string]StreamState),
		results: make(map[string]BlockResult),
		status:  make(map[string]BlockStatus),
	}
}

// initFeeds populates the stream table from every Feed-sourced stream's
// design spec. Feed blocks themselves are never "computed".
func (rc *run) initFeeds() {
	for _, s := range rc.fs.Streams {
		if s.Feed != nil {
			rc.streams[s.ID] = feedState(s.Feed)
		}
	}
	for _, b := range rc.fs.Blocks {
		if b.Type == BlockFeed {
			rc.status[b.ID] = StatusDone
			rc.results[b.ID] = BlockResult{BlockID: b.ID, Status: StatusDone}
		}
	}
}

// inletsReady reports whether every incoming stream of the block is
// already solved. A block may enter computing only once its populated
// input count equals its incoming connection count.
func (rc *run) inletsReady(b *Block) bool {
	for _, s := range rc.fs.Inlets(b.ID) {
		if _, ok := rc.streams[s.ID]; !ok {
			return false
		}
	}
	return true
}

// compute dispatches the block's balance model and merges its outputs
// into the run tables. The caller has already verified inlet readiness.
func (rc *run) compute(b *Block) error {
	inletStreams := rc.fs.Inlets(b.ID)
	inlets := make([]StreamState, len(inletStreams))
	for i, s := range inletStreams {
		state, ok := rc.streams[s.ID]
		if !ok {
			return fmt.Errorf("block %s: inlet stream %s not solved", b.ID, s.ID)
		}
		inlets[i] = state
	}
	outlets := rc.fs.Outlets(b.ID)

	singleInlet := func() (StreamState, error) {
		if len(inlets) != 1 {
			return StreamState{}, fmt.Errorf("block %s (%s): expected exactly one inlet, got %d", b.ID, b.Type, len(inlets))
		}
		return inlets[0], nil
	}

	var (
		out outletResult
		res BlockResult
		err error
	)
	switch b.Type {
	case BlockFlash, BlockSeparator:
		var in StreamState
		if in, err = singleInlet(); err == nil {
			out, res, err = computeFlash(b, in, outlets)
		}
	case BlockMixer:
		if len(inlets) == 0 {
			err = fmt.Errorf("block %s: mixer has no inlets", b.ID)
		} else {
			out, res, err = computeMixer(b, inlets, outlets)
		}
	case BlockSplitter:
		var in StreamState
		if in, err = singleInlet(); err == nil {
			out, res, err = computeSplitter(b, in, outlets)
		}
	case BlockPump:
		var in StreamState
		if in, err = singleInlet(); err == nil {
			out, res, err = computePump(b, in, outlets)
		}
	case BlockCompressor:
		var in StreamState
		if in, err = singleInlet(); err == nil {
			out, res, err = computeCompressor(b, in, outlets)
		}
	case BlockHeater, BlockCooler:
		var in StreamState
		if in, err = singleInlet(); err == nil {
			out, res, err = computeHeaterCooler(b, in, outlets)
		}
	default:
		// Absorber, Stripper, DistillationColumn, Reactor, Valve and any
		// future types pass the inlet through until a rigorous model lands.
		if len(inlets) == 0 {
			err = fmt.Errorf("block %s (%s): no inlet to propagate", b.ID, b.Type)
		} else {
			logrus.Debugf("block %s (%s): pass-through placeholder model", b.ID, b.Type)
			out, res, err = computePassThrough(b, inlets[0], outlets)
		}
	}
	if err != nil {
		return err
	}

	for id, state := range out {
		rc.streams[id] = state
	}
	res.Status = StatusDone
	rc.results[b.ID] = res
	return nil
}

// push executes the block if ready and recursively propagates to its
// downstream blocks. Re-entry into a block still marked computing is a
// true cycle and raises immediately.
func (rc *run) push(b *Block) error {
	if !b.IsProcess() {
		return nil
	}
	switch rc.status[b.ID] {
	case StatusDone:
		return nil
	case StatusComputing:
		return fmt.Errorf("circular dependency detected at block %s: recycle is not supported", b.ID)
	}
	if !rc.inletsReady(b) {
		// Another upstream branch will push this block again.
		return nil
	}

	rc.status[b.ID] = StatusComputing
	if err := rc.compute(b); err != nil {
		rc.status[b.ID] = StatusError
		rc.results[b.ID] = BlockResult{BlockID: b.ID, Status: StatusError, Err: err.Error()}
		return err
	}

	for _, s := range rc.fs.Outlets(b.ID) {
		next, ok := rc.fs.Block(s.To)
		if !ok {
			continue
		}
		if err := rc.push(next); err != nil {
			return err
		}
	}
	rc.status[b.ID] = StatusDone
	return nil
}

// findCycle returns the ids of blocks on some directed cycle among the
// still-unsolved process blocks, or nil when none exists.
func (rc *run) findCycle() []string {
	state := make(map[string]visitState)
	var cycle []string
	var dfs func(id string, trail []string) bool
	dfs = func(id string, trail []string) bool {
		state[id] = visiting
		trail = append(trail, id)
		for _, s := range rc.fs.Outlets(id) {
			next, ok := rc.fs.Block(s.To)
			if !ok || !next.IsProcess() {
				continue
			}
			switch state[next.ID] {
			case visiting:
				for i, t := range trail {
					if t == next.ID {
						cycle = append([]string{}, trail[i:]...)
						return true
					}
				}
			case unvisited:
				if dfs(next.ID, trail) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}
	for _, b := range rc.fs.Blocks {
		if b.IsProcess() && state[b.ID] == unvisited {
			if dfs(b.ID, nil) {
				return cycle
			}
		}
	}
	return nil
}

// failed builds a non-converged result around the tables solved so far.
func (rc *run) failed(err error) *SolverResult {
	return &SolverResult{Converged: false, Streams: rc.streams, Blocks: rc.results, Err: err.Error()}
}

// Solve runs the push-based executor: fail-fast, strict on cycles.
// This is the engine's reference executor.
func Solve(p *Project) *SolverResult {
	rc := newRun(p.Flowsheet)
	rc.initFeeds()

	for _, b := range p.Flowsheet.Blocks {
		if b.Type != BlockFeed {
			continue
		}
		for _, s := range rc.fs.Outlets(b.ID) {
			next, ok := rc.fs.Block(s.To)
			if !ok {
				continue
			}
			if err := rc.push(next); err != nil {
				return rc.failed(err)
			}
		}
	}

	// Blocks a push never reached are either starved by a recycle loop or
	// disconnected from any feed. Distinguish the two for the caller.
	var unsolved []string
	for _, b := range p.Flowsheet.Blocks {
		if b.IsProcess() && b.Type != BlockFeed && rc.status[b.ID] != StatusDone {
			unsolved = append(unsolved, b.ID)
		}
	}
	if len(unsolved) > 0 {
		sort.Strings(unsolved)
		if cycle := rc.findCycle(); cycle != nil {
			return rc.failed(fmt.Errorf("circular dependency detected among blocks %v: recycle is not supported", cycle))
		}
		return rc.failed(fmt.Errorf("blocks %v never received all inlets; check flowsheet connectivity", unsolved))
	}

	return &SolverResult{Converged: true, Streams: rc.streams, Blocks: rc.results}
}

// SolveSequential executes blocks in the Sequencer's topological order.
// It shares the model dispatch with Solve but inherits the sequencer's
// permissive cycle policy: a recycle boundary surfaces later as a
// missing-inlet failure rather than an explicit cycle error.
func SolveSequential(p *Project) *SolverResult {
	rc := newRun(p.Flowsheet)
	rc.initFeeds()

	for _, id := range Sequence(p.Flowsheet) {
		b, ok := p.Flowsheet.Block(id)
		if !ok || b.Type == BlockFeed {
			continue
		}
		rc.status[id] = StatusComputing
		if err := rc.compute(b); err != nil {
			rc.status[id] = StatusError
			rc.results[id] = BlockResult{BlockID: id, Status: StatusError, Err: err.Error()}
			return rc.failed(err)
		}
		rc.status[id] = StatusDone
	}
	return &SolverResult{Converged: true, Streams: rc.streams, Blocks: rc.results}
}
