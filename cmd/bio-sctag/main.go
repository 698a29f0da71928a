package main

/*
bio-sctag extracts cell barcodes and UMIs from single-cell FASTQ files. For
the supported chemistries, run "bio-sctag protocols".
*/

import "github.com/grailbio/sctag/cmd/bio-sctag/cmd"

func main() {
	cmd.Run()
}
