// Package umi encodes unique molecular identifiers as 2-bit packed k-mers and
// holds the process-wide UMI width used by the encoding.
package umi
