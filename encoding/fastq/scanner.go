package fastq

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when the files of a read set have different
	// numbers of records.
	ErrDiscordant = errors.New("discordant FASTQ files")
)

// maxLineLen bounds the length of a FASTQ line. Long-read files can exceed
// bufio.Scanner's 64KiB default.
const maxLineLen = 16 << 20

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Name returns the read ID without the leading '@' and without the comment
// that follows the first space, if any.
func (r *Read) Name() string {
	id := r.ID
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	for i := 0; i < len(id); i++ {
		if id[i] == ' ' || id[i] == '\t' {
			return id[:i]
		}
	}
	return id
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner performs some validation: it requires ID lines to begin
// with "@" and that line 3 begins with "+", but does not perform
// further validation (e.g., seq/qual being of equal length,
// containing only data in range, etc.)
type Scanner struct {
	b      *bufio.Scanner
	err    error
	fields Field
	// n is the number of records scanned so far.
	n int
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq|Qual.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLen)
	return &Scanner{b: b, fields: fields}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	f.n++
	id := f.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&ID != 0 {
		read.ID = string(id)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Seq != 0 {
		read.Seq = f.b.Text()
	}
	if !f.scan() {
		return false
	}
	unk := f.b.Bytes()
	if len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&Unk != 0 {
		read.Unk = string(unk)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Qual != 0 {
		read.Qual = f.b.Text()
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Count returns the number of complete or partial records scanned so far.
func (f *Scanner) Count() int { return f.n }

// Err returns the scanning error, if any. Format errors wrap ErrShort or
// ErrInvalid with the record number; use errors.Cause to compare.
func (f *Scanner) Err() error {
	switch f.err {
	case nil, errEOF:
		return nil
	case ErrShort, ErrInvalid:
		return errors.Wrapf(f.err, "record %d", f.n)
	}
	return f.err
}

// SetScanner scans the files of a read set (R1, R2, I1, ...) in lockstep.
type SetScanner struct {
	scanners []*Scanner
	err      error
}

// NewSetScanner creates a scanner over the given readers, one per read
// number.
func NewSetScanner(readers []io.Reader, fields Field) *SetScanner {
	s := &SetScanner{scanners: make([]*Scanner, len(readers))}
	for i, r := range readers {
		s.scanners[i] = NewScanner(r, fields)
	}
	return s
}

// NewPairScanner creates a set scanner from the provided R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader, fields Field) *SetScanner {
	return NewSetScanner([]io.Reader{r1, r2}, fields)
}

// Len returns the number of reads in each set.
func (s *SetScanner) Len() int { return len(s.scanners) }

// Scan scans the next read set into reads, which must have Len()
// elements. Scan returns a boolean indicating whether the scan
// succeeded. Once Scan returns false, it never returns true again.
// Upon completion, the user should check the Err method to determine
// whether scanning stopped because of an error or because the end of
// the stream was reached.
func (s *SetScanner) Scan(reads []Read) bool {
	if s.err != nil {
		return false
	}
	if len(reads) != len(s.scanners) {
		s.err = errors.Errorf("fastq: scan of %d reads into a set of %d", len(s.scanners), len(reads))
		return false
	}
	nOK := 0
	for i, sc := range s.scanners {
		if sc.Scan(&reads[i]) {
			nOK++
		}
	}
	if nOK == len(s.scanners) {
		return true
	}
	if nOK != 0 {
		s.err = ErrDiscordant
	}
	if s.err == nil {
		s.err = errEOF
	}
	return false
}

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (s *SetScanner) Err() error {
	for i, sc := range s.scanners {
		if err := sc.Err(); err != nil {
			return errors.Wrapf(err, "read %d", i+1)
		}
	}
	if s.err == errEOF {
		return nil
	}
	return s.err
}
