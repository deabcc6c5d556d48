package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachereplay/config"
	"github.com/sarchlab/cachereplay/datarecording"
	"github.com/sarchlab/cachereplay/hierarchy"
	"github.com/sarchlab/cachereplay/monitoring"
	"github.com/sarchlab/cachereplay/trace"
)

var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay a memory access log against the cache hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runReplay(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().String("config", "",
		"YAML configuration file; unset values fall back to the defaults")
	runCmd.Flags().String("record-db", "",
		"record results into a SQLite database at this path "+
			"(\".sqlite3\" is appended)")
	runCmd.Flags().Bool("monitor", false,
		"serve live statistics and progress over HTTP")
	runCmd.Flags().Int("monitor-port", 0,
		"port for the monitoring server, random if 0")
	runCmd.Flags().Bool("skip-malformed", false,
		"skip malformed trace lines instead of aborting")

	rootCmd.AddCommand(runCmd)
}

func runReplay(cmd *cobra.Command, tracePath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	h, err := buildHierarchy(cfg)
	if err != nil {
		return err
	}

	traceFile, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer traceFile.Close()

	skipMalformed, _ := cmd.Flags().GetBool("skip-malformed")
	replayer := trace.NewReplayer(h).
		WithProgressInterval(cfg.ProgressInterval).
		WithSkipMalformed(skipMalformed)

	if monitor, _ := cmd.Flags().GetBool("monitor"); monitor {
		attachMonitor(cmd, h, replayer, tracePath)
	}

	summary, err := replayer.Replay(trace.NewReader(traceFile))
	if err != nil {
		return fmt.Errorf("replaying trace: %w", err)
	}

	stats := h.Stats()
	printStats(cmd.OutOrStdout(), stats)

	if dbPath, _ := cmd.Flags().GetString("record-db"); dbPath != "" {
		recordResults(dbPath, tracePath, cfg, stats, summary)
	}

	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		return config.NewDefault(), nil
	}

	return config.LoadFromFile(cfgPath)
}

func buildHierarchy(cfg *config.Config) (*hierarchy.Hierarchy, error) {
	l1Builder, err := cfg.L1.CacheBuilder()
	if err != nil {
		return nil, fmt.Errorf("l1: %w", err)
	}

	l2Builder, err := cfg.L2.CacheBuilder()
	if err != nil {
		return nil, fmt.Errorf("l2: %w", err)
	}

	l3Builder, err := cfg.L3.CacheBuilder()
	if err != nil {
		return nil, fmt.Errorf("l3: %w", err)
	}

	h := hierarchy.MakeBuilder().
		WithNumCores(cfg.NumCores).
		WithL1CacheBuilder(l1Builder).
		WithL2CacheBuilder(l2Builder).
		WithL3CacheBuilder(l3Builder).
		Build("Hierarchy")

	return h, nil
}

func attachMonitor(
	cmd *cobra.Command,
	h *hierarchy.Hierarchy,
	replayer *trace.Replayer,
	tracePath string,
) {
	m := monitoring.NewMonitor()

	if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
		m.WithPortNumber(port)
	}

	m.RegisterStatsSource(h)

	bar := m.CreateProgressBar(filepath.Base(tracePath), 0)
	replayer.WithProgressBar(bar)

	m.StartServer()
}

func printStats(w io.Writer, stats hierarchy.Stats) {
	fmt.Fprintf(w, "Cache Statistics:\n")
	fmt.Fprintf(w, "L1: %d hits, %d misses\n",
		stats.L1.Hits, stats.L1.Misses)
	fmt.Fprintf(w, "L2: %d hits, %d misses\n",
		stats.L2.Hits, stats.L2.Misses)
	fmt.Fprintf(w, "L3: %d hits, %d misses\n",
		stats.L3.Hits, stats.L3.Misses)
}

type levelStatsEntry struct {
	Level  string
	Hits   uint64
	Misses uint64
}

type replayEntry struct {
	TraceFile    string
	NumCores     int
	NumRecords   uint64
	NumMalformed uint64
}

func recordResults(
	dbPath, tracePath string,
	cfg *config.Config,
	stats hierarchy.Stats,
	summary trace.Summary,
) {
	recorder := datarecording.New(strings.TrimSuffix(dbPath, ".sqlite3"))

	recorder.CreateTable("level_stats", levelStatsEntry{})
	recorder.InsertData("level_stats",
		levelStatsEntry{"L1", stats.L1.Hits, stats.L1.Misses})
	recorder.InsertData("level_stats",
		levelStatsEntry{"L2", stats.L2.Hits, stats.L2.Misses})
	recorder.InsertData("level_stats",
		levelStatsEntry{"L3", stats.L3.Hits, stats.L3.Misses})

	recorder.CreateTable("replay", replayEntry{})
	recorder.InsertData("replay", replayEntry{
		TraceFile:    tracePath,
		NumCores:     cfg.NumCores,
		NumRecords:   summary.NumRecords,
		NumMalformed: summary.NumMalformed,
	})

	recorder.Flush()
}
