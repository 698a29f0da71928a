// Package tagging runs a protocol over FASTQ read sets: it extracts the cell
// barcode and the UMI of every read set, writes the cDNA read with both tags
// appended to its name, and tallies barcode frequencies.
//
// A read set whose reads are too short for the protocol is dropped and
// counted in Stats.ShortReads; it never stops the run.
package tagging
