package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/cobrau"
	"github.com/untillpro/goutils/logger"

	"uasset-go/batch"
	"uasset-go/config"
	"uasset-go/uasset"
)

var version = "0.1.0"

var (
	flagParallel  int
	flagSchema    string
	flagOut       string
	flagOverwrite bool
	flagConfig    string
)

var red func(a ...interface{}) string
var green func(a ...interface{}) string

func main() {
	red = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	if err := execRootCmd(os.Args, version); err != nil {
		os.Exit(1)
	}
}

func execRootCmd(args []string, ver string) error {
	rootCmd := cobrau.PrepareRootCmd(
		"uasset",
		"Container codec utility",
		args,
		ver,
		newModeCmd("to-json", "Convert containers to their textual mirror", batch.ModeToJSON),
		newModeCmd("from-json", "Rebuild containers from textual mirrors", batch.ModeFromJSON),
		newModeCmd("verify", "Check that rewriting reproduces the source bytes", batch.ModeVerify),
	)
	for _, cmd := range rootCmd.Commands() {
		switch cmd.Name() {
		case "to-json", "from-json", "verify":
			cmd.Flags().IntVarP(&flagParallel, "parallel", "p", 0, "Worker count, 0 means one per CPU")
			cmd.Flags().StringVarP(&flagSchema, "schema", "s", "", "Path to a schema catalog")
			cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output directory, defaults to next to each input")
			cmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Replace existing output files")
			cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML batch config")
		}
	}
	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}

func newModeCmd(use, short string, mode batch.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, mode)
		},
	}
}

func runBatch(cmd *cobra.Command, args []string, mode batch.Mode) error {
	opts := batch.Options{
		Mode:        mode,
		Parallelism: flagParallel,
		OutDir:      flagOut,
		Overwrite:   flagOverwrite,
	}
	schemaPath := flagSchema
	paths := args

	if flagConfig != "" {
		cfg, err := config.LoadBatchConfig(flagConfig)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		if opts.Parallelism == 0 {
			opts.Parallelism = cfg.Parallelism
		}
		if schemaPath == "" {
			schemaPath = cfg.Schema
		}
		if opts.OutDir == "" {
			opts.OutDir = cfg.Out
		}
		opts.Overwrite = opts.Overwrite || cfg.Overwrite
		if len(paths) == 0 {
			paths = cfg.Inputs
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files")
	}

	if schemaPath != "" {
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		if opts.Schema, err = uasset.LoadSchemaCatalog(data); err != nil {
			logger.Error(err.Error())
			return err
		}
	}

	opts.Progress = func(r batch.Result) {
		if r.Err != nil {
			fmt.Println(red("FAIL"), r.Path+":", r.Err)
			return
		}
		if r.Out != "" {
			fmt.Println(green("OK  "), r.Path, "->", r.Out)
		} else {
			fmt.Println(green("OK  "), r.Path)
		}
	}

	results := batch.Process(cmd.Context(), paths, opts)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	skipped := len(paths) - len(results)
	if skipped > 0 {
		logger.Info("cancelled,", skipped, "files not started")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
