package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/report"
	"github.com/sarchlab/csim/sim"
	"github.com/sarchlab/csim/workload/transpose"
)

var transposeCmd = &cobra.Command{
	Use:   "transpose",
	Short: "Measure the cache misses of a matrix transpose routine.",
	Long: "`transpose --routine [name] -M 32 -N 32` transposes an N-by-M " +
		"matrix with the named routine and reports its cache misses. " +
		"`transpose --list` lists the available routines.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		registry := transpose.DefaultRegistry()

		list, _ := cmd.Flags().GetBool("list")
		if list {
			for _, r := range registry.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n",
					r.Name, r.Description)
			}

			return
		}

		result, err := runTranspose(cmd, registry)
		if err != nil {
			atexit.Fatalf("Error: %v\n", err)
		}

		if !result.Correct {
			atexit.Fatalf("Routine %s did not transpose the matrix.\n",
				result.Routine)
		}
	},
}

// transposeGeometry is a direct-mapped cache of 32 blocks of 32 bytes.
var transposeGeometry = addressing.Geometry{
	SetIndexBits:    5,
	LinesPerSet:     1,
	BlockOffsetBits: 5,
}

func init() {
	addGeometryFlags(transposeCmd.Flags(), transposeGeometry)

	transposeCmd.Flags().IntP("cols", "M", 32,
		"The number of columns of the source matrix.")
	transposeCmd.Flags().IntP("rows", "N", 32,
		"The number of rows of the source matrix.")
	transposeCmd.Flags().StringP("routine", "r", "blocked",
		"The transpose routine to evaluate.")
	transposeCmd.Flags().Bool("list", false,
		"List the available routines.")
	transposeCmd.Flags().BoolP("verbose", "v", false,
		"Print every cache access to stderr.")

	rootCmd.AddCommand(transposeCmd)
}

func runTranspose(
	cmd *cobra.Command,
	registry *transpose.Registry,
) (transpose.Result, error) {
	flags := cmd.Flags()
	g := geometryFromFlags(flags)
	m, _ := flags.GetInt("cols")
	n, _ := flags.GetInt("rows")
	name, _ := flags.GetString("routine")
	verbose, _ := flags.GetBool("verbose")

	routine, ok := registry.Get(name)
	if !ok {
		return transpose.Result{}, fmt.Errorf("unknown routine %q", name)
	}

	var hooks []sim.Hook
	if verbose {
		hooks = append(hooks, cache.NewVerboseHook(log.New(os.Stderr, "", 0)))
	}

	result, err := transpose.Evaluate(routine, m, n, g, hooks...)
	if err != nil {
		return result, err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%dx%d, %s)\n", routine.Description, n, m, g)
	fmt.Fprintf(out, "misses: %d\n", result.Stats.Misses)

	err = report.PrintSummary(out, result.Stats)

	return result, err
}
