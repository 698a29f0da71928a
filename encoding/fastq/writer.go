package fastq

import "io"

var newline = []byte{'\n'}

// Writer is a FASTQ file writer. It does not buffer; wrap the underlying
// writer in a bufio.Writer for throughput.
type Writer struct {
	w   io.Writer
	err error
	n   int
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	return w.WriteRecord(r.ID, r.Seq, r.Unk, r.Qual)
}

// WriteRecord writes one record from its four lines. id must include the
// leading '@'. An empty unk is written as "+".
func (w *Writer) WriteRecord(id, seq, unk, qual string) error {
	if unk == "" {
		unk = "+"
	}
	w.writeln(id)
	w.writeln(seq)
	w.writeln(unk)
	w.writeln(qual)
	if w.err == nil {
		w.n++
	}
	return w.err
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.n }

// Err returns the first write error, if any. Once a write fails, all later
// writes are dropped.
func (w *Writer) Err() error { return w.err }

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}
