package tagging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/sctag/encoding/fastq"
	"github.com/grailbio/sctag/protocol"
	"github.com/klauspost/compress/gzip"
)

// Run tags the read sets in inputPaths, one FASTQ path per read number
// (R1, R2, ...), and writes the selected read of each tagged set to
// outputPath. Inputs may be compressed; the output is gzipped if outputPath
// ends in ".gz". Output order follows input order.
//
// p must be fully configured before Run is called; Run only reads it.
func Run(ctx context.Context, p protocol.Protocol, inputPaths []string, outputPath string, opts Opts) (stats Stats, err error) {
	tagger, err := NewTagger(p, len(inputPaths), opts.OutputRead)
	if err != nil {
		return Stats{}, err
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultOpts.BatchSize
	}

	var (
		inputs  = make([]file.File, len(inputPaths))
		readers = make([]io.Reader, len(inputPaths))
	)
	defer func() {
		for i, in := range inputs {
			if in == nil {
				continue
			}
			if e := in.Close(ctx); e != nil && err == nil {
				err = errors.E(e, "close", inputPaths[i])
			}
		}
	}()
	for i, path := range inputPaths {
		if inputs[i], err = file.Open(ctx, path); err != nil {
			return Stats{}, errors.E(err, "open", path)
		}
		readers[i] = inputs[i].Reader(ctx)
		if u := compress.NewReaderPath(readers[i], inputs[i].Name()); u != nil {
			readers[i] = u
		}
	}

	out, err := newTaggedWriter(ctx, outputPath)
	if err != nil {
		return Stats{}, err
	}
	counts := newBarcodeCounts()
	scanner := fastq.NewSetScanner(readers, fastq.All)
	batch := newBatch(batchSize, len(inputPaths))
	for {
		n := batch.fill(scanner)
		if n == 0 {
			break
		}
		batchStats, err := batch.tag(tagger, parallelism, counts)
		if err != nil {
			return stats, out.closeAfter(ctx, err)
		}
		stats = stats.Merge(batchStats)
		if err := batch.write(out); err != nil {
			return stats, out.closeAfter(ctx, errors.E(err, "write", outputPath))
		}
		if n < batchSize {
			break
		}
		log.Printf("%s: %d read sets, %d tagged", inputPaths[0], stats.ReadSets, stats.Tagged)
	}
	if err := scanner.Err(); err != nil {
		return stats, out.closeAfter(ctx, errors.E(err, "scan", strings.Join(inputPaths, ",")))
	}
	if err := out.close(ctx); err != nil {
		return stats, errors.E(err, "close", outputPath)
	}
	log.Printf("Tagged %d of %d read sets (%d short, %d short features, %d UMIs with N) into %s",
		stats.Tagged, stats.ReadSets, stats.ShortReads, stats.ShortFeatures, stats.UMIsWithN, outputPath)

	if opts.CountsPath != "" {
		rows := counts.sorted()
		if err := writeCounts(ctx, opts.CountsPath, rows); err != nil {
			return stats, err
		}
		log.Printf("Wrote %d barcodes to %s", len(rows), opts.CountsPath)
	}
	if f := stats.FailureFraction(); f > opts.MaxFailureFraction {
		return stats, errors.E(errors.Invalid,
			fmt.Sprintf("%.4f of read sets failed extraction, above the limit of %.4f", f, opts.MaxFailureFraction))
	}
	return stats, nil
}

// batch holds read sets between scanning and writing.
type batch struct {
	n      int
	reads  [][]fastq.Read
	tagged []Tagged
	ok     []bool
}

func newBatch(size, nReads int) *batch {
	b := &batch{
		reads:  make([][]fastq.Read, size),
		tagged: make([]Tagged, size),
		ok:     make([]bool, size),
	}
	for i := range b.reads {
		b.reads[i] = make([]fastq.Read, nReads)
	}
	return b
}

// fill scans up to len(b.reads) read sets and returns the number scanned.
func (b *batch) fill(s *fastq.SetScanner) int {
	b.n = 0
	for b.n < len(b.reads) && s.Scan(b.reads[b.n]) {
		b.n++
	}
	return b.n
}

// tag extracts the tags of the scanned read sets using parallelism
// goroutines, each on a contiguous range.
func (b *batch) tag(t *Tagger, parallelism int, counts *barcodeCounts) (Stats, error) {
	if parallelism > b.n {
		parallelism = b.n
	}
	jobStats := make([]Stats, parallelism)
	err := traverse.Each(parallelism, func(jobIdx int) error {
		start := (jobIdx * b.n) / parallelism
		end := ((jobIdx + 1) * b.n) / parallelism
		local := map[string]int{}
		for i := start; i < end; i++ {
			b.tagged[i], b.ok[i] = t.Tag(b.reads[i], &jobStats[jobIdx])
			if b.ok[i] {
				local[b.tagged[i].Barcode]++
			}
		}
		counts.addAll(local)
		return nil
	})
	var stats Stats
	for _, s := range jobStats {
		stats = stats.Merge(s)
	}
	return stats, err
}

func (b *batch) write(w *taggedWriter) error {
	for i := 0; i < b.n; i++ {
		if !b.ok[i] {
			continue
		}
		r := b.tagged[i].Read
		if err := w.fq.WriteRecord(b.tagged[i].ID, r.Seq, r.Unk, r.Qual); err != nil {
			return err
		}
	}
	return nil
}

// taggedWriter is the output FASTQ stream.
type taggedWriter struct {
	out file.File
	gz  *gzip.Writer
	buf *bufio.Writer
	fq  *fastq.Writer
}

func newTaggedWriter(ctx context.Context, path string) (*taggedWriter, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	w := &taggedWriter{out: out}
	var dst io.Writer = out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(dst)
		dst = w.gz
	}
	w.buf = bufio.NewWriterSize(dst, 1<<20)
	w.fq = fastq.NewWriter(w.buf)
	return w, nil
}

func (w *taggedWriter) close(ctx context.Context) error {
	once := errors.Once{}
	once.Set(w.buf.Flush())
	if w.gz != nil {
		once.Set(w.gz.Close())
	}
	once.Set(w.out.Close(ctx))
	return once.Err()
}

// closeAfter closes w after a failure and returns err, or the close error
// if err is nil.
func (w *taggedWriter) closeAfter(ctx context.Context, err error) error {
	once := errors.Once{}
	once.Set(err)
	if e := w.close(ctx); e != nil {
		once.Set(errors.E(e, "close", w.out.Name()))
	}
	return once.Err()
}
