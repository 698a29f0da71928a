package tagging

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sctag/protocol"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func writeFASTQ(t *testing.T, path string, seqs []string) {
	var buf bytes.Buffer
	for i, seq := range seqs {
		fmt.Fprintf(&buf, "@read%d %d:N:0\n%s\n+\n%s\n", i, i%2+1, seq, strings.Repeat("E", len(seq)))
	}
	data := buf.Bytes()
	if strings.HasSuffix(path, ".gz") {
		var gzBuf bytes.Buffer
		gz := gzip.NewWriter(&gzBuf)
		_, err := gz.Write(data)
		assert.NoError(t, err)
		assert.NoError(t, gz.Close())
		data = gzBuf.Bytes()
	}
	assert.NoError(t, ioutil.WriteFile(path, data, 0600))
}

func readGzip(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)
	out, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	return string(out)
}

func TestRun(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	var r1, r2 []string
	barcodes := []string{"AAAAAA", "CCCCCC", "AAAAAA", "GGGGGG", "AAAAAA"}
	for i, bc := range barcodes {
		r1 = append(r1, bc+fmt.Sprintf("ACGTA%d", i%4)+"TTTTTTTT")
		r2 = append(r2, fmt.Sprintf("CDNA%dCDNA", i))
	}
	r1[1] = "CCCCC" // too short
	r1Path := filepath.Join(tempDir, "r1.fastq")
	r2Path := filepath.Join(tempDir, "r2.fastq.gz")
	writeFASTQ(t, r1Path, r1)
	writeFASTQ(t, r2Path, r2)

	outPath := filepath.Join(tempDir, "out.fastq.gz")
	opts := DefaultOpts
	opts.Parallelism = 3
	opts.BatchSize = 2
	opts.CountsPath = filepath.Join(tempDir, "counts.tsv")
	// CELSeq2's UMI contains a non-ACGT digit in these reads.
	stats, err := Run(ctx, protocol.CELSeq2(), []string{r1Path, r2Path}, outPath, opts)
	assert.NoError(t, err)
	expect.EQ(t, stats, Stats{ReadSets: 5, Tagged: 4, ShortReads: 1, UMIsWithN: 4})

	expect.EQ(t, readGzip(t, outPath), ""+
		"@read0_AAAAAA_ACGTA0 1:N:0\nCDNA0CDNA\n+\nEEEEEEEEE\n"+
		"@read2_AAAAAA_ACGTA2 1:N:0\nCDNA2CDNA\n+\nEEEEEEEEE\n"+
		"@read3_GGGGGG_ACGTA3 2:N:0\nCDNA3CDNA\n+\nEEEEEEEEE\n"+
		"@read4_AAAAAA_ACGTA0 1:N:0\nCDNA4CDNA\n+\nEEEEEEEEE\n")

	counts, err := ioutil.ReadFile(opts.CountsPath)
	assert.NoError(t, err)
	expect.EQ(t, string(counts), "#barcode\tcount\nAAAAAA\t3\nGGGGGG\t1\n")
}

func TestRunFailureFraction(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	r1Path := filepath.Join(tempDir, "r1.fastq")
	writeFASTQ(t, r1Path, []string{"ACGTACGTACGTACGTACGT", "ACGT", "ACGT"})
	outPath := filepath.Join(tempDir, "out.fastq")
	opts := DefaultOpts
	opts.MaxFailureFraction = 0.5
	stats, err := Run(ctx, protocol.CELSeq2(), []string{r1Path}, outPath, opts)
	expect.EQ(t, stats, Stats{ReadSets: 3, Tagged: 1, ShortReads: 2})
	expect.True(t, strings.Contains(fmt.Sprint(err), "failed extraction"), err)

	// The output is still written.
	out, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	expect.EQ(t, string(out), "@read0_ACGTAC_GTACGT 1:N:0\nACGTACGTACGTACGTACGT\n+\nEEEEEEEEEEEEEEEEEEEE\n")
}

func TestRunDiscordant(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	r1Path := filepath.Join(tempDir, "r1.fastq")
	r2Path := filepath.Join(tempDir, "r2.fastq")
	writeFASTQ(t, r1Path, []string{"ACGTACGTACGTACGTACGT", "ACGTACGTACGTACGTACGT"})
	writeFASTQ(t, r2Path, []string{"ACGT"})
	_, err := Run(ctx, protocol.CELSeq2(), []string{r1Path, r2Path}, filepath.Join(tempDir, "out.fastq"), DefaultOpts)
	expect.True(t, strings.Contains(fmt.Sprint(err), "discordant"), err)

	_, err = Run(ctx, protocol.CELSeq2(), []string{filepath.Join(tempDir, "missing.fastq")}, filepath.Join(tempDir, "out2.fastq"), DefaultOpts)
	expect.NotNil(t, err)
}

func TestRunCITESeq(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	r2 := "NNNNNNNNNN" + "ACGTACGTACGTACG" + "TTTTT"
	r1Path := filepath.Join(tempDir, "r1.fastq")
	r2Path := filepath.Join(tempDir, "r2.fastq")
	writeFASTQ(t, r1Path, []string{"AAAACCCCGGGGTTTT" + "ACGTACGTAC", "AAAACCCCGGGGTTTT" + "ACGTACGTAC"})
	writeFASTQ(t, r2Path, []string{r2, "NNNN"})
	qual := strings.Repeat("E", len(r2))

	run := func(popts protocol.Opts, name string) string {
		p, err := protocol.New(popts)
		assert.NoError(t, err)
		outPath := filepath.Join(tempDir, name)
		stats, err := Run(ctx, p, []string{r1Path, r2Path}, outPath, DefaultOpts)
		assert.NoError(t, err)
		expect.EQ(t, stats, Stats{ReadSets: 2, Tagged: 1, ShortReads: 1, ShortFeatures: 1})
		out, err := ioutil.ReadFile(outPath)
		assert.NoError(t, err)
		return string(out)
	}

	popts := protocol.DefaultOpts
	popts.Name = "citeseq"
	expect.EQ(t, run(popts, "default.fastq"),
		"@read0_AAAACCCCGGGGTTTT_ACGTACGTAC_ACGTACGTACGTACG 1:N:0\n"+r2+"\n+\n"+qual+"\n")

	popts.FeatureStart = 0
	popts.FeatureLength = 5
	expect.EQ(t, run(popts, "moved.fastq"),
		"@read0_AAAACCCCGGGGTTTT_ACGTACGTAC_NNNNN 1:N:0\n"+r2+"\n+\n"+qual+"\n")
}

func TestTaggedWriterCloseAfter(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	w, err := newTaggedWriter(ctx, filepath.Join(tempDir, "out.fastq"))
	assert.NoError(t, err)
	assert.NoError(t, w.close(ctx))

	// A failed close is reported when there is no earlier error.
	expect.NotNil(t, w.closeAfter(ctx, nil))

	first := fmt.Errorf("scan failed")
	expect.EQ(t, w.closeAfter(ctx, first), first)
}
