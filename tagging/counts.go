package tagging

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

const nCountShards = 64

type countShard struct {
	mu     sync.Mutex
	counts map[string]int
}

// barcodeCounts is a concurrent barcode frequency table. Barcodes are spread
// over shards by hash so that extraction goroutines rarely contend.
type barcodeCounts struct {
	shards [nCountShards]countShard
}

func newBarcodeCounts() *barcodeCounts {
	c := &barcodeCounts{}
	for i := range c.shards {
		c.shards[i].counts = map[string]int{}
	}
	return c
}

// addAll adds the counts in m.
func (c *barcodeCounts) addAll(m map[string]int) {
	for bc, n := range m {
		s := &c.shards[farm.Hash64([]byte(bc))%nCountShards]
		s.mu.Lock()
		s.counts[bc] += n
		s.mu.Unlock()
	}
}

// BarcodeCount is one row of the barcode frequency table.
type BarcodeCount struct {
	Barcode string
	Count   int
}

// sorted returns the table sorted by decreasing count, then barcode.
func (c *barcodeCounts) sorted() []BarcodeCount {
	var rows []BarcodeCount
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for bc, n := range s.counts {
			rows = append(rows, BarcodeCount{bc, n})
		}
		s.mu.Unlock()
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Barcode < rows[j].Barcode
	})
	return rows
}

// writeCounts writes rows as a two-column TSV with a "#barcode count"
// header.
func writeCounts(ctx context.Context, path string, rows []BarcodeCount) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create barcode counts", path)
	}
	w := tsv.NewWriter(out.Writer(ctx))
	once := errors.Once{}
	w.WriteString("#barcode")
	w.WriteString("count")
	once.Set(w.EndLine())
	for _, row := range rows {
		w.WriteString(row.Barcode)
		w.WriteString(strconv.Itoa(row.Count))
		if err := w.EndLine(); err != nil {
			once.Set(err)
			break
		}
	}
	once.Set(w.Flush())
	once.Set(out.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "write barcode counts", path)
	}
	return nil
}
