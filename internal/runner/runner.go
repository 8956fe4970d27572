package runner

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	updateutils "github.com/projectdiscovery/utils/update"
)

// Options holds the resolved command-line configuration for a single
// drtalearn invocation.
type Options struct {
	SamplesFile        string
	AutomatonFile      string
	Output             string
	DotOutput          string
	Config             string
	KMax               int
	ConflictStrategy   string
	Verbose            bool
	Silent             bool
	DisableUpdateCheck bool
}

// ParseFlags parses os.Args into Options, seeding solver defaults from the
// persisted CLIDefaults and layering any --config file on top.
func ParseFlags() *Options {
	opts := &Options{
		KMax:             DefaultCLIDefaults.KMax,
		ConflictStrategy: DefaultCLIDefaults.Conflict,
	}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Learns a minimal deterministic real-time automaton from labelled timed traces.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.SamplesFile, "samples", "s", "", "path to the external sample trace file"),
		flagSet.StringVarP(&opts.AutomatonFile, "automaton", "a", "", "optional JSON automaton fixture; it is only parsed, and a parse failure is logged as a warning"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&opts.Output, "output", "o", "", "output file for the learned DRTA JSON (default stdout)"),
		flagSet.StringVar(&opts.DotOutput, "dot", "", "optional output file for a GraphViz DOT rendering of the learned DRTA"),
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "display verbose output"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "display results only"),
		flagSet.CallbackVar(printVersion, "version", "display drtalearn version"),
	)

	flagSet.CreateGroup("solver", "Solver",
		flagSet.StringVar(&opts.Config, "config", "", `drtalearn solver config file (default '$HOME/.config/drtalearn/defaults_`+version+`.yaml')`),
		flagSet.IntVar(&opts.KMax, "k-max", opts.KMax, "maximum colour count to search before giving up (NOSOLUTION)"),
		flagSet.StringVar(&opts.ConflictStrategy, "conflict-strategy", opts.ConflictStrategy, "accept/reject conflict tie-breaker: time-pattern, majority, or strict-reject"),
	)

	flagSet.CreateGroup("update", "Update",
		flagSet.CallbackVarP(GetUpdateCallback(), "update", "up", "update drtalearn to latest version"),
		flagSet.BoolVarP(&opts.DisableUpdateCheck, "disable-update-check", "duc", false, "disable automatic drtalearn update check"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not read flags: %s\n", err)
	}

	if opts.Config != "" {
		cfg, err := LoadSolverConfig(opts.Config)
		if err != nil {
			gologger.Error().Msgf("failed to read solver config file got %v", err)
		} else {
			cfg.ApplyTo(opts)
		}
	}

	if opts.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	} else if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	showBanner()

	if !opts.DisableUpdateCheck {
		latestVersion, err := updateutils.GetVersionCheckCallback("drtalearn")()
		if err != nil {
			if opts.Verbose {
				gologger.Error().Msgf("drtalearn version check failed: %v", err.Error())
			}
		} else {
			gologger.Info().Msgf("Current drtalearn version %v %v", version, updateutils.GetVersionDescription(version, latestVersion))
		}
	}

	if opts.SamplesFile == "" {
		gologger.Fatal().Msgf("drtalearn: no input sample file given (-s)")
	}

	return opts
}

func printVersion() {
	gologger.Info().Msgf("Current version: %s", version)
	os.Exit(0)
}
