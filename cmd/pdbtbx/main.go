// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pdbtbx/internal/core"
	"pdbtbx/internal/gzipio"
	"pdbtbx/internal/logging"
	mmcifin "pdbtbx/internal/parser/mmcif"
	pdbin "pdbtbx/internal/parser/pdb"
	mmcifout "pdbtbx/internal/output/mmcif"
	pdbout "pdbtbx/internal/output/pdb"
	"pdbtbx/internal/options"
	"pdbtbx/internal/validate"
)

type convertFlags struct {
	outFile          string
	format           string
	strictness       string
	discardHydrogens bool
	onlyFirstModel   bool
	verbose          bool
}

type validateFlags struct {
	strictness string
	verbose    bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pdbtbx",
		Short: "Macromolecular structure file toolbox",
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Read a structure file and write it in another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Output format: pdb, mmcif, or auto")
	cmd.Flags().StringVar(&flags.strictness, "strictness", "strict", "Parse strictness: strict, medium, or loose")
	cmd.Flags().BoolVar(&flags.discardHydrogens, "discard-hydrogens", false, "Drop hydrogen atoms while reading")
	cmd.Flags().BoolVar(&flags.onlyFirstModel, "only-first-model", false, "Stop reading after the first model")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level logging")

	return cmd
}

func validateCmd() *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Parse a structure file and report every diagnostic found",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.strictness, "strictness", "loose", "Parse strictness: strict, medium, or loose")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level logging")

	return cmd
}

func runConvert(inPath, outPath string, flags *convertFlags) error {
	log, err := logging.New(flags.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	strictness, err := parseStrictness(flags.strictness)
	if err != nil {
		return err
	}

	readOpts := options.NewReadOptions()
	readOpts.Level = strictness
	readOpts.DiscardHydrogens = flags.discardHydrogens
	readOpts.OnlyFirstModel = flags.onlyFirstModel

	pdb, diags, err := readStructure(inPath, readOpts)
	logging.LogDiagnostics(log, diags, strictness)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	writeOpts := options.NewWriteOptions()
	writeOpts.Format, _ = options.DetectFormat(outPath)
	if flags.format != "auto" {
		f, err := parseFormatFlag(flags.format)
		if err != nil {
			return err
		}
		writeOpts.Format = f
	}

	return writeStructure(outPath, pdb, writeOpts)
}

func runValidate(inPath string, flags *validateFlags) error {
	log, err := logging.New(flags.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	strictness, err := parseStrictness(flags.strictness)
	if err != nil {
		return err
	}

	readOpts := options.NewReadOptions()
	readOpts.Level = strictness

	pdb, diags, err := readStructure(inPath, readOpts)
	logging.LogDiagnostics(log, diags, strictness)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	structural := validate.Structure(pdb)
	logging.LogDiagnostics(log, structural, strictness)
	if structural.HasErrors(strictness) {
		return fmt.Errorf("%s: validation failed", inPath)
	}
	return nil
}

func readStructure(path string, opts options.ReadOptions) (*core.PDB, core.Diagnostics, error) {
	format, gzipped := options.DetectFormat(path)
	if opts.Format != options.Auto {
		format = opts.Format
	}
	if opts.Decompress {
		gzipped = true
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r, err := gzipio.Reader(f, gzipped)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress: %w", err)
	}

	switch format {
	case options.Mmcif:
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, nil, fmt.Errorf("read file: %w", err)
		}
		return mmcifin.Parse(string(raw), opts)
	default:
		return pdbin.Parse(r, opts)
	}
}

func writeStructure(path string, pdb *core.PDB, opts options.WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	format := opts.Format
	if format == options.Auto {
		format, _ = options.DetectFormat(path)
	}

	switch format {
	case options.Mmcif:
		return mmcifout.Write(f, pdb, opts)
	default:
		return pdbout.Write(f, pdb, opts)
	}
}

func parseStrictness(s string) (core.StrictnessLevel, error) {
	switch strings.ToLower(s) {
	case "strict":
		return core.Strict, nil
	case "medium":
		return core.Medium, nil
	case "loose":
		return core.Loose, nil
	default:
		return core.Strict, fmt.Errorf("unrecognized strictness %q", s)
	}
}

func parseFormatFlag(s string) (options.Format, error) {
	switch strings.ToLower(s) {
	case "pdb":
		return options.PDB, nil
	case "mmcif":
		return options.Mmcif, nil
	case "auto":
		return options.Auto, nil
	default:
		return options.Auto, fmt.Errorf("unrecognized format %q", s)
	}
}
