package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// valueSentinel detects whether a numeric flag was explicitly set so
// saved settings can supply the default. Negative values are outside
// every valid range.
const valueSentinel = -1.0

// commonFlags holds flags shared across modes.
type commonFlags struct {
	quiet   bool
	verbose bool
	version bool
}

// convertCLIFlags holds conversion flags.
type convertCLIFlags struct {
	outputDir string
	method    string
}

// watermarkCLIFlags holds watermark flags.
type watermarkCLIFlags struct {
	enabled  bool
	text     string
	opacity  float64
	fontSize float64
	rotation float64
	fontPath string
}

// depsCLIFlags holds dependency management flags.
type depsCLIFlags struct {
	check   bool
	install bool
}

// cliFlags holds all flags for the rabpdf command.
type cliFlags struct {
	common    commonFlags
	convert   convertCLIFlags
	watermark watermarkCLIFlags
	deps      depsCLIFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
}

// addConvertFlags adds conversion flags to a FlagSet.
func addConvertFlags(fs *flag.FlagSet, f *convertCLIFlags) {
	fs.StringVarP(&f.outputDir, "outdir", "o", "", "output directory for produced PDFs")
	fs.StringVarP(&f.method, "method", "m", "auto", "conversion method: auto, native, headless")
}

// addWatermarkFlags adds watermark flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkCLIFlags) {
	fs.BoolVarP(&f.enabled, "watermark", "w", false, "apply a tiled text watermark")
	fs.StringVarP(&f.text, "text", "t", "", "watermark text (default: last used)")
	fs.Float64Var(&f.opacity, "opacity", valueSentinel, "watermark opacity (0.0-1.0)")
	fs.Float64Var(&f.fontSize, "font-size", valueSentinel, "watermark font size in points")
	fs.Float64Var(&f.rotation, "rotation", valueSentinel, "watermark rotation in degrees")
	fs.StringVar(&f.fontPath, "font", "", "TrueType font file for watermark text")
}

// addDepsFlags adds dependency management flags to a FlagSet.
func addDepsFlags(fs *flag.FlagSet, f *depsCLIFlags) {
	fs.BoolVar(&f.check, "check-deps", false, "report whether LibreOffice is installed and exit")
	fs.BoolVar(&f.install, "install-deps", false, "download and install LibreOffice, then exit")
}

// parseFlags parses command-line arguments into cliFlags and positional
// input paths.
func parseFlags(args []string) (*cliFlags, []string, error) {
	flags := &cliFlags{}
	fs := flag.NewFlagSet("rabpdf", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	addCommonFlags(fs, &flags.common)
	addConvertFlags(fs, &flags.convert)
	addWatermarkFlags(fs, &flags.watermark)
	addDepsFlags(fs, &flags.deps)

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return flags, fs.Args(), nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `rabpdf converts office documents to PDF and applies tiled text watermarks.

Usage:
  rabpdf [flags] <file-or-directory>...

Accepted input types: .ppt .pptx .doc .docx .pdf
Directories are expanded one level deep.

Flags:
%s`, fs.FlagUsages())
}
