package cmd

import (
	"log"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdProtocols() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "protocols",
		Short: "List the built-in chemistries",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return listProtocols(env.Stdout)
	})
	return cmd
}

func newCmdGeometry() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "geometry",
		Short: "Parse and describe tag geometries",
		Long: `
Each argument is a geometry of the form <read>[<start>-<end>,...], where read
is the 1-based read number and each range is a 1-based closed interval. For
example, "1[1-16]" is the first 16 bases of R1.`,
		ArgsName: "geometry...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return describeGeometries(env.Stdout, argv)
	})
	return cmd
}

func newCmdExtract() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "extract",
		Short: "Extract barcodes and UMIs and write tagged reads",
		Long: `
Reads one FASTQ file per read number (R1, R2, ...), extracts the cell barcode
and the UMI of each read set, and writes one read of each set with
"_<barcode>_<umi>" appended to its name. Read sets that are too short for the
protocol are dropped. Inputs may be compressed; the output is gzipped if its
name ends in ".gz".`,
		ArgsName: "output input...",
	}
	flags := newExtractFlags(&cmd.Flags)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return extract(flags, argv)
	})
	return cmd
}

// Run is the entry point of bio-sctag.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-sctag",
			Short:    "Tools for single-cell barcode and UMI extraction",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdExtract(),
				newCmdProtocols(),
				newCmdGeometry(),
			},
		})
}
