package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sctag/protocol"
	"github.com/grailbio/sctag/tagging"
)

type extractFlags struct {
	protoOpts protocol.Opts
	tagOpts   tagging.Opts
	// outputRead is 1-based; 0 selects the last read.
	outputRead int
}

func newExtractFlags(fs *flag.FlagSet) *extractFlags {
	f := &extractFlags{
		protoOpts: protocol.DefaultOpts,
		tagOpts:   tagging.DefaultOpts,
	}
	p := &f.protoOpts
	fs.StringVar(&p.Name, "protocol", p.Name, "Chemistry, one of "+strings.Join(protocol.Names(), ", "))
	fs.StringVar(&p.W1, "w1", "", "inDrop W1 adapter sequence")
	fs.IntVar(&p.FeatureStart, "feature-start", p.FeatureStart, "CITE-seq feature tag offset in R2, 0-based; negative keeps the default")
	fs.IntVar(&p.FeatureLength, "feature-length", p.FeatureLength, "CITE-seq feature tag length; negative keeps the default")
	fs.StringVar(&p.BarcodeGeometry, "bc-geometry", "", "Barcode geometry, e.g. 1[1-16]; requires -protocol=geometry")
	fs.StringVar(&p.UMIGeometry, "umi-geometry", "", "UMI geometry, e.g. 1[17-28]; requires -protocol=geometry")

	o := &f.tagOpts
	fs.IntVar(&o.Parallelism, "parallelism", o.Parallelism, "Number of extraction goroutines; 0 = runtime.NumCPU()")
	fs.IntVar(&o.BatchSize, "batch-size", o.BatchSize, "Number of read sets per batch")
	fs.IntVar(&f.outputRead, "output-read", 0, "1-based number of the read to write; 0 writes the last read")
	fs.Float64Var(&o.MaxFailureFraction, "max-failure-fraction", o.MaxFailureFraction, "Fail if a larger fraction of read sets cannot be tagged")
	fs.StringVar(&o.CountsPath, "counts", "", "If set, write a barcode frequency TSV to this path")
	return f
}

func extract(flags *extractFlags, argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("extract takes an output path and at least one input path, but got %v", argv)
	}
	p, err := protocol.New(flags.protoOpts)
	if err != nil {
		return err
	}
	if err := protocol.Configure(p); err != nil {
		return err
	}
	opts := flags.tagOpts
	opts.OutputRead = flags.outputRead - 1
	log.Printf("extract: protocol %s, barcode length %d, UMI length %d",
		p.Name(), p.BarcodeLength(), p.UMILength())
	if gp, ok := p.(*protocol.GeometryProtocol); ok {
		log.Printf("extract: %v", gp)
	}
	ctx := vcontext.Background()
	_, err = tagging.Run(ctx, p, argv[1:], argv[0], opts)
	return err
}
