package umi

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// MaxK is the longest UMI that fits in a Kmer.
const MaxK = 32

// Kmer is a 2-bit packed UMI. The first base occupies the most significant
// used bits, so Kmers of the same width sort like their sequences.
type Kmer uint64

var (
	baseToBits [256]int8
	bitsToBase = [4]byte{'A', 'C', 'G', 'T'}
)

func init() {
	for i := range baseToBits {
		baseToBits[i] = -1
	}
	for bits, base := range bitsToBase {
		baseToBits[base] = int8(bits)
		baseToBits[base+'a'-'A'] = int8(bits)
	}
}

// Encoder packs and unpacks UMIs of a fixed width. The zero Encoder has width
// zero and encodes only the empty UMI.
type Encoder struct {
	k int
}

// NewEncoder creates an encoder for k-base UMIs.
func NewEncoder(k int) (Encoder, error) {
	if k < 0 || k > MaxK {
		return Encoder{}, errors.E(errors.Invalid, fmt.Sprintf("umi width %d out of range [0, %d]", k, MaxK))
	}
	return Encoder{k: k}, nil
}

// K returns the UMI width.
func (e Encoder) K() int { return e.k }

// Encode packs seq. It returns false if seq does not have the encoder's width
// or contains a base other than ACGT (either case).
func (e Encoder) Encode(seq []byte) (Kmer, bool) {
	if len(seq) != e.k {
		return 0, false
	}
	var km Kmer
	for _, c := range seq {
		bits := baseToBits[c]
		if bits < 0 {
			return 0, false
		}
		km = km<<2 | Kmer(bits)
	}
	return km, true
}

// Decode unpacks km into an upper-case sequence.
func (e Encoder) Decode(km Kmer) string {
	buf := make([]byte, e.k)
	for i := e.k - 1; i >= 0; i-- {
		buf[i] = bitsToBase[km&3]
		km >>= 2
	}
	return string(buf)
}

// MaxValue returns 4^k, the number of distinct k-base sequences, saturated at
// math.MaxUint32.
func MaxValue(k int) uint32 {
	if k >= 16 {
		return math.MaxUint32
	}
	return uint32(1) << (2 * uint(k))
}
