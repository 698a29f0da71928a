package tagging

// Opts controls Run.
type Opts struct {
	// Parallelism is the number of extraction goroutines. 0 means
	// runtime.NumCPU().
	Parallelism int
	// BatchSize is the number of read sets read before extraction starts on
	// them.
	BatchSize int
	// OutputRead is the 0-based number of the read written to the output,
	// usually the cDNA read. A negative value selects the last read.
	OutputRead int
	// MaxFailureFraction is the largest fraction of read sets that may fail
	// extraction before Run reports an error. The output is still written.
	MaxFailureFraction float64
	// CountsPath, if nonempty, is where the barcode frequency table is
	// written.
	CountsPath string
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Parallelism:        0,
	BatchSize:          1 << 16,
	OutputRead:         -1,
	MaxFailureFraction: 1,
}

// Stats summarizes a tagging run.
type Stats struct {
	// ReadSets is the number of read sets processed.
	ReadSets int
	// Tagged is the number of read sets whose barcode and UMI were
	// extracted.
	Tagged int
	// ShortReads is the number of read sets dropped because a read was too
	// short for the protocol, or lacked the protocol's layout.
	ShortReads int
	// ShortFeatures is the number of CITE-seq read sets, also counted in
	// ShortReads, dropped because the feature read was too short.
	ShortFeatures int
	// UMIsWithN counts tagged read sets whose UMI contains a non-ACGT base.
	UMIsWithN int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.ReadSets += o.ReadSets
	s.Tagged += o.Tagged
	s.ShortReads += o.ShortReads
	s.ShortFeatures += o.ShortFeatures
	s.UMIsWithN += o.UMIsWithN
	return s
}

// FailureFraction returns ShortReads/ReadSets, or 0 if nothing was read.
func (s Stats) FailureFraction() float64 {
	if s.ReadSets == 0 {
		return 0
	}
	return float64(s.ShortReads) / float64(s.ReadSets)
}
