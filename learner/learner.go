// Package learner wires the full pipeline together: timed-APTA
// construction, incremental Min-3RTA minimisation, DRTA assembly and
// conflict resolution, SMT colour search, and region-partition
// optimisation, returning a verified DRTA.
package learner

import (
	"fmt"
	"time"

	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/apta"
	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/encoder"
	"github.com/projectdiscovery/drtalearn/minimizer"
	"github.com/projectdiscovery/drtalearn/partition"
	"github.com/projectdiscovery/drtalearn/region"
	"github.com/projectdiscovery/drtalearn/trace"
	"github.com/projectdiscovery/drtalearn/verifier"
)

// Options configures a single learning run.
type Options struct {
	// KMax bounds the colour-count search; 0 selects encoder.DefaultKMax.
	KMax int
	// Conflict resolves accept/reject conflicts surfaced during DRTA
	// construction; nil selects drta.ByTimePattern.
	Conflict drta.ConflictStrategy
}

// Result is everything a caller needs to inspect or report on a learning
// run: the intermediate structures, the final model, and the verification
// outcome against the original sample set.
type Result struct {
	APTA *apta.APTA
	// DRTA is the pre-SMT intermediate multigraph assembled from the
	// Min-3RTA register: one vertex per canonical node, raw deduplicated
	// transitions. It does not yet satisfy section 8's totality/determinism
	// properties; kept for diagnostics.
	DRTA *drta.DRTA
	// Minimal is the learning deliverable: the k-colour DRTA whose edges
	// are the region-partition optimiser's total disjoint guards.
	Minimal    *drta.DRTA
	Model      *encoder.Model
	Partitions []partition.Group
	Verify     verifier.Result
	SMTTime    time.Duration
}

// Correct reports whether the learned automaton classifies every input
// sample as labelled.
func (r *Result) Correct() bool { return r.Verify.Correct() }

// Learn runs the whole pipeline over samples and returns the learned,
// verified DRTA. Errors correspond to the section 7 error kinds:
// malformed input, or an encoder search that exhausted KMax without a
// satisfying colouring (NOSOLUTION).
func Learn(samples []trace.Sample, opts Options) (*Result, error) {
	for i, s := range samples {
		if err := s.Trace.Validate(); err != nil {
			return nil, fmt.Errorf("learner: sample %d: %w", i, err)
		}
	}

	alphabet := region.BuildAlphabet(trace.Times(samples))
	builtAPTA, err := apta.Build(alphabet, samples)
	if err != nil {
		return nil, fmt.Errorf("learner: building timed-APTA: %w", err)
	}
	gologger.Info().Msgf("learner: built timed-APTA with %d nodes over %d samples", builtAPTA.NumNodes(), len(samples))

	builder := minimizer.BuildFromSamples(samples)
	if !builder.NoTwoCanonicalNodesEquivalent() {
		gologger.Warning().Msg("learner: Min-3RTA canonicity check failed; two canonical nodes remain equivalent")
	}
	snap := builder.Snapshot()

	d, err := drta.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("learner: building DRTA: %w", err)
	}

	conflicts := d.Conflicts()
	if len(conflicts) > 0 {
		strategy := opts.Conflict
		if strategy == nil {
			strategy = drta.ByTimePattern{}
		}
		gologger.Warning().Msgf("learner: resolving %d accept/reject conflicts", len(conflicts))
		drta.ResolveConflicts(d, snap.Terminal, strategy)
	}

	kMax := opts.KMax
	if kMax <= 0 {
		kMax = encoder.DefaultKMax
	}

	start := time.Now()
	model, err := encoder.Learn(d, kMax)
	smtTime := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("learner: %w", err)
	}
	gologger.Info().Msgf("learner: found consistent colouring with k=%d in %s", model.K, smtTime)

	groups := partition.Optimise(model)
	for _, g := range groups {
		if err := partition.Validate(g); err != nil {
			gologger.Warning().Msgf("learner: %v", err)
		}
	}

	automaton := verifier.FromModelAndGroups(d, model, groups)
	result := verifier.Verify(automaton, samples)
	if !result.Correct() {
		gologger.Warning().Msgf("learner: %d/%d samples misclassified by the learned automaton", len(result.Mismatches), result.Total)
	}

	minimal := buildMinimalDRTA(d, model, groups)

	return &Result{
		APTA:       builtAPTA,
		DRTA:       d,
		Minimal:    minimal,
		Model:      model,
		Partitions: groups,
		Verify:     result,
		SMTTime:    smtTime,
	}, nil
}

// buildMinimalDRTA turns the optimised guard groups into the k-colour DRTA
// that is the actual learning output, per section 8's totality and
// determinism properties.
func buildMinimalDRTA(d *drta.DRTA, model *encoder.Model, groups []partition.Group) *drta.DRTA {
	var edges []drta.Edge
	for _, g := range groups {
		for _, guard := range g.Guards {
			edges = append(edges, drta.Edge{
				Source: drta.VertexID(g.Source),
				Target: drta.VertexID(guard.Target),
				Symbol: g.Symbol,
				Region: guard.Region,
			})
		}
	}
	initial := drta.VertexID(model.NodeColour[d.Root])
	return drta.FromColouring(model.K, initial, model.Accepting, edges, d.SymbolID)
}
