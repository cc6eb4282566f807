// Package cmd provides the command-line interface of the cache simulator.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/mem/trace"
	"github.com/sarchlab/csim/monitoring"
	"github.com/sarchlab/csim/report"
)

// Environment variables that replace the default value of a flag.
const (
	envSetBits   = "CSIM_SET_BITS"
	envLines     = "CSIM_LINES"
	envBlockBits = "CSIM_BLOCK_BITS"
	envTrace     = "CSIM_TRACE"
	envDSN       = "CSIM_CLICKHOUSE_DSN"
)

// rootCmd replays a memory trace against a cache when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "csim",
	Short: "csim simulates a set-associative cache with LRU replacement.",
	Long: `csim replays a Valgrind memory trace against a set-associative ` +
		`cache and reports the number of hits, misses and evictions. ` +
		`The transpose subcommand measures the misses of matrix ` +
		`transpose routines.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return applyEnv(cmd.Flags(), map[string]string{
			"set-bits":   envSetBits,
			"lines":      envLines,
			"block-bits": envBlockBits,
			"trace":      envTrace,
			"clickhouse": envDSN,
		})
	},
	Run: func(cmd *cobra.Command, _ []string) {
		err := runTrace(cmd)
		if err != nil {
			atexit.Fatalf("Error: %v\n", err)
		}
	},
}

var traceGeometry = addressing.Geometry{
	SetIndexBits:    2,
	LinesPerSet:     2,
	BlockOffsetBits: 3,
}

func init() {
	addGeometryFlags(rootCmd.Flags(), traceGeometry)

	rootCmd.Flags().StringP("trace", "t", "traces/trans.trace",
		"The Valgrind trace to replay.")
	rootCmd.Flags().BoolP("verbose", "v", false,
		"Print the outcome of every instruction.")
	rootCmd.Flags().Bool("log-accesses", false,
		"Log the tag, set and outcome of every access to stderr.")
	rootCmd.Flags().String("record", "",
		"Record every access into the given SQLite database.")
	rootCmd.Flags().String("clickhouse", "",
		"Record every access into the ClickHouse server of the given DSN.")
	rootCmd.Flags().Bool("monitor", false,
		"Serve the cache statistics over HTTP while replaying.")
	rootCmd.Flags().Bool("open-browser", false,
		"Open the statistics served by the monitor in a browser.")
	rootCmd.Flags().Int("port", 0,
		"The port of the monitoring server. A random port is used if 0.")
	rootCmd.Flags().String("results", report.ResultsFile,
		"The file the hit, miss and eviction counts are written to.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	err = rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

func addGeometryFlags(flags *pflag.FlagSet, g addressing.Geometry) {
	flags.Uint32P("set-bits", "s", g.SetIndexBits,
		"The number of set index bits. The cache has 2^s sets.")
	flags.Uint32P("lines", "E", g.LinesPerSet,
		"The number of lines per set.")
	flags.Uint32P("block-bits", "b", g.BlockOffsetBits,
		"The number of block offset bits. A block has 2^b bytes.")
}

func geometryFromFlags(flags *pflag.FlagSet) addressing.Geometry {
	s, _ := flags.GetUint32("set-bits")
	e, _ := flags.GetUint32("lines")
	b, _ := flags.GetUint32("block-bits")

	return addressing.Geometry{
		SetIndexBits:    s,
		LinesPerSet:     e,
		BlockOffsetBits: b,
	}
}

// applyEnv sets the flags that are not given on the command line from their
// environment variables.
func applyEnv(flags *pflag.FlagSet, env map[string]string) error {
	for name, key := range env {
		value, ok := os.LookupEnv(key)
		if !ok || flags.Changed(name) {
			continue
		}

		err := flags.Set(name, value)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, value, err)
		}
	}

	return nil
}

func runTrace(cmd *cobra.Command) error {
	flags := cmd.Flags()
	g := geometryFromFlags(flags)
	tracePath, _ := flags.GetString("trace")
	verbose, _ := flags.GetBool("verbose")
	logAccesses, _ := flags.GetBool("log-accesses")
	recordPath, _ := flags.GetString("record")
	dsn, _ := flags.GetString("clickhouse")
	monitorOn, _ := flags.GetBool("monitor")
	openBrowser, _ := flags.GetBool("open-browser")
	port, _ := flags.GetInt("port")
	resultsPath, _ := flags.GetString("results")

	manager, err := cache.MakeBuilder().WithGeometry(g).Build()
	if err != nil {
		return err
	}

	if logAccesses {
		manager.AcceptHook(trace.NewTracer(log.New(os.Stderr, "", 0)))
	}

	recorder, err := newRecorder(recordPath, dsn)
	if err != nil {
		return err
	}

	if recorder != nil {
		defer recorder.Close()

		execRecorder := datarecording.NewExecRecorder(recorder)
		execRecorder.Start()
		execRecorder.Set("Geometry", g.String())
		execRecorder.Set("Trace", tracePath)
		defer execRecorder.End()

		manager.AcceptHook(trace.NewDBTracer(recorder))
	}

	if monitorOn {
		monitor := monitoring.NewMonitor().WithPortNumber(port)
		monitor.RegisterManager(manager)
		monitor.StartServer()

		if openBrowser {
			err = monitor.OpenBrowser()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
			}
		}
	}

	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()

	replayer := trace.NewReplayer(manager)
	if verbose {
		replayer.WithVisitor(trace.NewPrintVisitor(cmd.OutOrStdout()))
	}

	_, err = replayer.Replay(context.Background(), trace.NewReader(f))
	if err != nil {
		return err
	}

	stats := manager.Stats()

	err = report.PrintSummary(cmd.OutOrStdout(), stats)
	if err != nil {
		return err
	}

	return report.WriteResults(resultsPath, stats)
}

func newRecorder(path, dsn string) (datarecording.DataRecorder, error) {
	switch {
	case path != "" && dsn != "":
		return nil, fmt.Errorf("--record and --clickhouse cannot be combined")
	case dsn != "":
		return datarecording.NewWithConfig(datarecording.RecorderConfig{
			Type:    "clickhouse",
			ConnStr: dsn,
		})
	case path != "":
		return datarecording.NewWithConfig(datarecording.RecorderConfig{
			Path: path,
		})
	default:
		return nil, nil
	}
}
