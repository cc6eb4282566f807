// Package report prints and saves the statistics of a simulation.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/csim/mem/cache"
)

// ResultsFile is where the statistics are saved by default.
const ResultsFile = ".csim_results"

// PrintSummary writes the statistics as "hits:H misses:M evictions:E".
func PrintSummary(w io.Writer, s cache.Stats) error {
	_, err := fmt.Fprintf(w, "hits:%d misses:%d evictions:%d\n",
		s.Hits, s.Misses, s.Evictions)

	return err
}

// WriteResults saves the statistics as "H M E" into the file at path.
func WriteResults(path string, s cache.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(f, "%d %d %d\n", s.Hits, s.Misses, s.Evictions)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
