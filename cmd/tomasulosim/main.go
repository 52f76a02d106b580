// Package main provides the entry point for tomasulosim, a cycle-level
// Tomasulo/ROB/CPR superscalar simulator.
package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"github.com/sarchlab/tomasulosim/timing/config"
	"github.com/sarchlab/tomasulosim/timing/tomasulo"
	"github.com/sarchlab/tomasulosim/trace"
)

func main() {
	app := &cli.App{
		Name:    "tomasulosim",
		Usage:   "cycle-level Tomasulo/ROB/CPR superscalar pipeline simulator",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "plain-text instruction trace file (see trace.TextSource)",
			},
			&cli.StringFlag{
				Name:  "elf",
				Usage: "ARM64 ELF binary to run functionally and replay as a trace",
			},
			&cli.Uint64Flag{
				Name:  "max-insts",
				Usage: "cap on instructions replayed from --elf (0 = unlimited)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a JSON simulator config file",
			},
			&cli.IntFlag{
				Name:  "mode",
				Usage: "recovery mode: 0=baseline, 1=rob, 2=cpr",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "r",
				Usage: "number of result (CDB) buses",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "k0",
				Usage: "function-unit count for class 0",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "k1",
				Usage: "function-unit count for class 1",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "k2",
				Usage: "function-unit count for class 2",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "f",
				Usage: "fetch width",
				Value: -1,
			},
			&cli.Int64Flag{
				Name:  "e",
				Usage: "exception period (0 disables exceptions)",
				Value: -1,
			},
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "write the per-cycle TSV event log to this file",
			},
			&cli.BoolFlag{
				Name:  "no-table",
				Usage: "suppress the per-instruction timing table",
			},
		},
		Action: run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 1)
	}

	source, closeSource, err := resolveSource(c)
	if err != nil {
		return err
	}
	if closeSource != nil {
		defer closeSource()
	}

	var opts []tomasulo.EngineOption
	var logFile *os.File
	var logger *tomasulo.TSVLogger
	if path := c.String("log"); path != "" {
		logFile, err = os.Create(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to create log file: %v", err), 1)
		}
		logger = tomasulo.NewTSVLogger(logFile)
		opts = append(opts, tomasulo.WithLogger(logger))
	}

	engine := tomasulo.NewEngine(cfg, source, opts...)
	engine.Run()

	if logger != nil {
		if err := logger.Flush(); err != nil {
			return cli.Exit(fmt.Sprintf("failed to flush log file: %v", err), 1)
		}
		logFile.Close()
	}

	printStats(engine.Stats())
	if !c.Bool("no-table") {
		printTimingTable(engine.Instructions())
	}

	return nil
}

// resolveConfig builds the run's Config: start from a file (or defaults),
// then apply any explicit per-field CLI overrides.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("failed to load config: %v", err), 1)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if v := c.Int("mode"); v != -1 {
		cfg.Mode = config.Mode(v)
	}
	if v := c.Int("r"); v != -1 {
		cfg.R = v
	}
	if v := c.Int("k0"); v != -1 {
		cfg.K0 = v
	}
	if v := c.Int("k1"); v != -1 {
		cfg.K1 = v
	}
	if v := c.Int("k2"); v != -1 {
		cfg.K2 = v
	}
	if v := c.Int("f"); v != -1 {
		cfg.F = v
	}
	if v := c.Int64("e"); v != -1 {
		cfg.E = uint64(v)
	}

	return cfg, nil
}

// resolveSource picks the trace source from --elf or --trace (mutually
// exclusive; --elf wins if both are given), returning an optional closer
// for the underlying file.
func resolveSource(c *cli.Context) (tomasulo.Source, func(), error) {
	if path := c.String("elf"); path != "" {
		src, err := trace.NewELFSource(path, c.Uint64("max-insts"))
		if err != nil {
			return nil, nil, cli.Exit(fmt.Sprintf("failed to build ELF trace: %v", err), 1)
		}
		return src, nil, nil
	}

	if path := c.String("trace"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, cli.Exit(fmt.Sprintf("failed to open trace file: %v", err), 1)
		}
		return trace.NewTextSource(f), func() { f.Close() }, nil
	}

	return nil, nil, cli.Exit("one of --elf or --trace is required", 1)
}

func printStats(s tomasulo.Stats) {
	fmt.Printf("cycle_count          %d\n", s.CycleCount)
	fmt.Printf("retired_instruction  %d\n", s.RetiredInstruction)
	fmt.Printf("max_disp_size        %d\n", s.MaxDispSize)
	fmt.Printf("avg_disp_size        %.4f\n", s.AvgDispSize)
	fmt.Printf("avg_inst_fired       %.4f\n", s.AvgInstFired)
	fmt.Printf("avg_inst_retired     %.4f\n", s.AvgInstRetired)
	fmt.Printf("reg_file_hit_count   %d\n", s.RegFileHitCount)
	fmt.Printf("rob_hit_count        %d\n", s.RobHitCount)
	fmt.Printf("exception_count      %d\n", s.ExceptionCount)
	fmt.Printf("backup_count         %d\n", s.BackupCount)
	fmt.Printf("flushed_count        %d\n", s.FlushedCount)
}

func printTimingTable(insts []*tomasulo.Instruction) {
	fmt.Printf("\nINST\tFETCH\tDISP\tSCHED\tEXEC\tUPDATE\n")
	for _, inst := range insts {
		fmt.Printf("%d\t%d\t%d\t%d\t%d\t%d\n",
			inst.Tag, inst.FetchCycle, inst.DispCycle, inst.SchedCycle,
			inst.ExecCycle, inst.UpdateCycle)
	}
}
