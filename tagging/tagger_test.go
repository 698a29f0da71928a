package tagging

import (
	"os"
	"testing"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/sctag/encoding/fastq"
	"github.com/grailbio/sctag/protocol"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSet(seqs ...string) []fastq.Read {
	reads := make([]fastq.Read, len(seqs))
	for i, seq := range seqs {
		reads[i] = fastq.Read{ID: "@frag1 1:N:0:ACGT", Seq: seq, Unk: "+", Qual: seq}
	}
	return reads
}

func TestTagID(t *testing.T) {
	expect.EQ(t, tagID("@r1", "AC", "GT"), "@r1_AC_GT")
	expect.EQ(t, tagID("@r1 1:N:0", "AC", "GT"), "@r1_AC_GT 1:N:0")
	expect.EQ(t, tagID("@r1\tx", "AC", ""), "@r1_AC_\tx")
	expect.EQ(t, tagID("r1", "AC", "GT"), "@r1_AC_GT")
	expect.EQ(t, tagID("", "", ""), "@__")
	expect.EQ(t, tagID("@r1 1:N:0", "AC", "GT", "TTT"), "@r1_AC_GT_TTT 1:N:0")
}

func TestTagger(t *testing.T) {
	tagger, err := NewTagger(protocol.CELSeq2(), 2, -1)
	require.NoError(t, err)

	var stats Stats
	reads := readSet("AAAAAACCCCCCTTTT", "GGGGGGGGGGGG")
	tagged, ok := tagger.Tag(reads, &stats)
	require.True(t, ok)
	expect.EQ(t, tagged.Barcode, "AAAAAA")
	expect.EQ(t, tagged.UMI, "CCCCCC")
	expect.EQ(t, tagged.ID, "@frag1_AAAAAA_CCCCCC 1:N:0:ACGT")
	expect.EQ(t, tagged.Read.Seq, "GGGGGGGGGGGG")

	_, ok = tagger.Tag(readSet("AAAAAACCCC", "GGGG"), &stats)
	expect.False(t, ok)

	_, ok = tagger.Tag(readSet("AAAAAACCNCCC", "GGGG"), &stats)
	expect.True(t, ok)

	expect.EQ(t, stats, Stats{ReadSets: 3, Tagged: 2, ShortReads: 1, UMIsWithN: 1})
}

func TestTaggerGeometry(t *testing.T) {
	opts := protocol.DefaultOpts
	opts.Name = protocol.GeometryName
	opts.BarcodeGeometry = "1[1-4,9-12]"
	opts.UMIGeometry = "2[1-4]"
	p, err := protocol.New(opts)
	require.NoError(t, err)

	_, err = NewTagger(p, 1, -1)
	assert.Error(t, err)
	_, err = NewTagger(p, 3, 3)
	assert.Error(t, err)

	tagger, err := NewTagger(p, 3, 2)
	require.NoError(t, err)
	var stats Stats
	tagged, ok := tagger.Tag(readSet("AAAAxxxxCCCC", "TTTTGG", "ACGTACGT"), &stats)
	require.True(t, ok)
	expect.EQ(t, tagged.Barcode, "AAAACCCC")
	expect.EQ(t, tagged.UMI, "TTTT")
	expect.EQ(t, tagged.Read.Seq, "ACGTACGT")

	_, ok = tagger.Tag(readSet("AAAAxxxxCCCC", "TTT", "ACGTACGT"), &stats)
	expect.False(t, ok)
}

func TestTaggerCITESeq(t *testing.T) {
	p := protocol.NewCITESeq()
	p.SetFeatureStart(2)
	p.SetFeatureLength(3)
	_, err := NewTagger(p, 1, -1)
	assert.Error(t, err)

	tagger, err := NewTagger(p, 2, -1)
	require.NoError(t, err)
	var stats Stats
	tagged, ok := tagger.Tag(readSet("AAAACCCCGGGGTTTTACGTACGTAC", "NNGATNN"), &stats)
	require.True(t, ok)
	expect.EQ(t, tagged.Barcode, "AAAACCCCGGGGTTTT")
	expect.EQ(t, tagged.UMI, "ACGTACGTAC")
	expect.EQ(t, tagged.Feature, "GAT")
	expect.EQ(t, tagged.ID, "@frag1_AAAACCCCGGGGTTTT_ACGTACGTAC_GAT 1:N:0:ACGT")

	_, ok = tagger.Tag(readSet("AAAACCCCGGGGTTTTACGTACGTAC", "NNGA"), &stats)
	expect.False(t, ok)
	expect.EQ(t, stats, Stats{ReadSets: 2, Tagged: 1, ShortReads: 1, ShortFeatures: 1})
}

func TestTaggerLongUMI(t *testing.T) {
	umiGeo, err := protocol.ParseGeometry("1[17-56]")
	require.NoError(t, err)
	bcGeo, err := protocol.ParseGeometry("1[1-16]")
	require.NoError(t, err)
	_, err = NewTagger(protocol.NewGeometryProtocol(bcGeo, umiGeo), 1, -1)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	a := Stats{ReadSets: 10, Tagged: 8, ShortReads: 2, ShortFeatures: 1, UMIsWithN: 1}
	b := Stats{ReadSets: 5, Tagged: 5}
	expect.EQ(t, a.Merge(b), Stats{ReadSets: 15, Tagged: 13, ShortReads: 2, ShortFeatures: 1, UMIsWithN: 1})
	expect.EQ(t, a.FailureFraction(), 0.2)
	expect.EQ(t, Stats{}.FailureFraction(), 0.0)
}

func TestBarcodeCounts(t *testing.T) {
	c := newBarcodeCounts()
	c.addAll(map[string]int{"AAAA": 2, "CCCC": 5})
	c.addAll(map[string]int{"AAAA": 3, "GGGG": 1, "TTTT": 5})
	expect.EQ(t, c.sorted(), []BarcodeCount{
		{"AAAA", 5}, {"CCCC", 5}, {"TTTT", 5}, {"GGGG", 1},
	})
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	defer shutdown()
	os.Exit(m.Run())
}
