package main

import (
	"fmt"
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/drtalearn/drta"
	"github.com/projectdiscovery/drtalearn/internal/automatonio"
	"github.com/projectdiscovery/drtalearn/internal/dotrender"
	"github.com/projectdiscovery/drtalearn/internal/runner"
	"github.com/projectdiscovery/drtalearn/internal/sampleio"
	"github.com/projectdiscovery/drtalearn/learner"
)

// status is the section 6 benchmarking-adapter exit status contract.
type status string

const (
	statusOK         status = "OK"
	statusError      status = "ERROR"
	statusNoSolution status = "NOSOLUTION"
	statusUnknown    status = "UNKNOWN"
)

func main() {
	opts := runner.ParseFlags()

	f, err := os.Open(opts.SamplesFile)
	if err != nil {
		report(statusError, nil, fmt.Sprintf("failed to open samples file: %v", err))
		os.Exit(1)
	}
	defer f.Close()

	_, samples, err := sampleio.Read(f)
	if err != nil {
		report(statusError, nil, fmt.Sprintf("failed to parse samples file: %v", err))
		os.Exit(1)
	}

	if opts.AutomatonFile != "" {
		af, err := os.Open(opts.AutomatonFile)
		if err != nil {
			gologger.Warning().Msgf("failed to open automaton fixture: %v", err)
		} else {
			defer af.Close()
			if _, err := automatonio.Read(af); err != nil {
				gologger.Warning().Msgf("failed to parse automaton fixture: %v", err)
			}
		}
	}

	conflict, err := conflictStrategy(opts.ConflictStrategy)
	if err != nil {
		report(statusError, nil, err.Error())
		os.Exit(1)
	}

	result, err := learner.Learn(samples, learner.Options{KMax: opts.KMax, Conflict: conflict})
	if err != nil {
		if isNoSolution(err) {
			report(statusNoSolution, nil, err.Error())
		} else {
			report(statusError, nil, err.Error())
		}
		os.Exit(1)
	}

	writeOutputs(opts, result)
	report(statusOK, result, "")
}

func conflictStrategy(name string) (drta.ConflictStrategy, error) {
	switch name {
	case "", "time-pattern":
		return drta.ByTimePattern{}, nil
	case "majority":
		return drta.ByMajority{}, nil
	case "strict-reject":
		return drta.StrictRejectOnConflict{}, nil
	default:
		return nil, fmt.Errorf("unknown conflict strategy %q", name)
	}
}

// isNoSolution reports whether err is the encoder's k-exhaustion failure,
// distinguishing NOSOLUTION from a generic ERROR per section 6's contract.
func isNoSolution(err error) bool {
	return err != nil && containsNoSolutionMarker(err.Error())
}

func containsNoSolutionMarker(msg string) bool {
	const marker = "NOSOLUTION"
	for i := 0; i+len(marker) <= len(msg); i++ {
		if msg[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}

func writeOutputs(opts *runner.Options, result *learner.Result) {
	bin, err := result.Minimal.MarshalJSON()
	if err != nil {
		gologger.Error().Msgf("failed to marshal learned DRTA: %v", err)
		return
	}

	if opts.Output == "" {
		gologger.Print().Msgf("%s\n", bin)
	} else if err := os.WriteFile(opts.Output, bin, 0644); err != nil {
		gologger.Error().Msgf("failed to write output to %v got %v", opts.Output, err)
	}

	if opts.DotOutput != "" {
		dot := dotrender.Render(result.Minimal)
		if err := os.WriteFile(opts.DotOutput, []byte(dot), 0644); err != nil {
			gologger.Error().Msgf("failed to write DOT output to %v got %v", opts.DotOutput, err)
		}
	}
}

// report prints the section 6 status line the benchmarking adapter parses:
// states/transitions describe the minimised k-colour DRTA, not the pre-SMT
// intermediate multigraph.
func report(s status, result *learner.Result, errMsg string) {
	if s != statusOK || result == nil {
		gologger.Info().Msgf("status: %s%s", s, suffixFor(errMsg))
		return
	}
	gologger.Info().Msgf(
		"status: %s, is correct: %s, states: %d, transitions: %d, smt time: %.3f",
		s, yesNo(result.Correct()), result.Model.K, len(result.Minimal.Edges), result.SMTTime.Seconds(),
	)
}

func suffixFor(errMsg string) string {
	if errMsg == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", errMsg)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
