// Package main provides the sentinel CLI, the operator entry point to the
// live monitor for the data-quality scoring pipeline.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dqs-sentinel/src/api"
	"dqs-sentinel/src/broker"
	"dqs-sentinel/src/config"
	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/export"
	"dqs-sentinel/src/logger"
	"dqs-sentinel/src/report"
	"dqs-sentinel/src/stream"
	"dqs-sentinel/src/tui"
)

var (
	// Application configuration, loaded before any command runs.
	appConfig  *config.Config
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sentinel-cli",
	Short: "DQS Sentinel - live monitor for the data-quality scoring pipeline",
	Long: `DQS Sentinel watches the scoring pipeline's live event stream and gives
operators a window into per-transaction decisions as they happen.

It connects to the Redpanda event topic for real-time updates and to the
backend's REST surface for history, statistics and control:
- watch:  interactive dashboard (TUI)
- run:    headless monitor printing events as lines
- logs:   query persisted history, print or export it
- report: recover structured records from a textual decision report

Configuration comes from ./sentinel.yaml (or --config) plus DQS_SENTINEL_*
environment overrides.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		appConfig, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
		if err := appConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	},
}

// newBackendClient builds the REST client from the loaded configuration.
func newBackendClient() *api.Client {
	return api.NewClient(appConfig.API.BaseURL, appConfig.API.Key, appConfig.API.Timeout)
}

// newDispatcher wires a connection actor to the configured Redpanda seeds.
// The consumer group gets a unique suffix so every CLI instance sees the full
// event stream instead of splitting partitions with other monitors.
func newDispatcher(backend *api.Client, log logger.Logger) *stream.Dispatcher {
	seeds := appConfig.Broker.Seeds
	groupID := fmt.Sprintf("%s-%s", appConfig.Broker.Group, uuid.NewString()[:8])

	dial := func(context.Context) (broker.Broker, error) {
		return broker.NewRedpandaBroker(seeds, log)
	}

	conn := stream.NewConn(stream.ConnConfig{
		Dial:              dial,
		GroupID:           groupID,
		HeartbeatInterval: appConfig.Stream.HeartbeatInterval,
		ReconnectDelay:    appConfig.Stream.ReconnectDelay,
		Logger:            log,
	})

	return stream.NewDispatcher(conn, backend, appConfig.Stream.BufferCapacity, log)
}

// watchCmd launches the interactive dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the live dashboard",
	Long: `Opens the interactive dashboard and starts the live stream immediately.
Events appear in real time as the pipeline scores them.

Keys: s start, x stop, c clear, r refresh, tab filter, enter detail, q quit.

Example:
  sentinel-cli watch`,
	Run: func(cmd *cobra.Command, args []string) {
		// Silent logger: stdout belongs to Bubble Tea once the program starts.
		log := logger.NewSilentLogger()
		d := newDispatcher(newBackendClient(), log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		d.Start(ctx)
		d.StartStream()

		fmt.Println("🚀 Launching dashboard (events stream in as they are scored)...")

		// Brief pause to ensure any remaining log output completes before TUI starts
		time.Sleep(100 * time.Millisecond)

		if err := tui.Run(d); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}

		d.Close()
	},
}

// runCmd runs the monitor without the TUI
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor headless, printing events as lines",
	Long: `Connects to the event stream and prints one line per event until
interrupted. Useful for terminals without TUI support and for piping the
live feed into other tools.

Example:
  sentinel-cli run
  sentinel-cli run | grep ESCALATE`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.NewConsoleLogger()
		d := newDispatcher(newBackendClient(), log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		d.Start(ctx)
		d.StartStream()

		fmt.Println("🔧 Headless monitor started (Ctrl+C to stop)")

		events := d.Events()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				printEvent(ev)
			case <-sigChan:
				fmt.Println()
				fmt.Println("Shutdown signal received, stopping monitor...")
				snap := d.Snapshot()
				d.StopStream()
				d.Close()
				printStats(snap.Stats)
				return
			}
		}
	},
}

// printEvent renders one dispatcher event as a log line.
func printEvent(ev stream.Event) {
	switch ev := ev.(type) {
	case stream.ConnectingEvent:
		fmt.Println("Connecting to event stream...")
	case stream.ConnectedEvent:
		fmt.Printf("Connected (total scored so far: %d)\n", ev.Stats.Total)
	case stream.ConnectErrorEvent:
		fmt.Printf("Connect failed: %s (retry pending)\n", ev.Err)
	case stream.DisconnectedEvent:
		fmt.Printf("Disconnected: %s\n", ev.Reason)
	case stream.StreamStartedEvent:
		if ev.AlreadyRunning {
			fmt.Println("Stream already running on backend")
		} else {
			fmt.Println("Stream started")
		}
	case stream.StreamStoppedEvent:
		fmt.Println("Stream stopped")
	case stream.CommandFailedEvent:
		fmt.Printf("Command %s failed: %s\n", ev.Command, ev.Err)
	case stream.TransactionAddedEvent:
		tx := ev.Event
		fmt.Printf("%s %s  %8.2f %s  DQS %5.1f  %s\n",
			tx.Action.Glyph(), tx.ID, tx.Amount, tx.Currency, tx.Score, tx.Reason)
	case stream.ClearedEvent:
		fmt.Println("Live log cleared")
	}
}

// statusCmd checks backend health and prints live statistics
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend health and live statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.API.Timeout)
		defer cancel()

		client := newBackendClient()
		if err := client.Health(ctx); err != nil {
			fail(err)
		}

		fmt.Printf("Backend:        %s\n", appConfig.API.BaseURL)
		fmt.Println("Status:         ok")

		stats, err := client.LiveStats(ctx)
		if err != nil {
			fail(err)
		}

		fmt.Println()
		printStats(stats)
	},
}

// printStats renders the aggregate counters in the backend's summary style.
func printStats(stats contracts.StatsSnapshot) {
	fmt.Printf("📊 Total Scored:   %d\n", stats.Total)
	for _, a := range []contracts.Action{
		contracts.ActionSafe,
		contracts.ActionReview,
		contracts.ActionEscalate,
		contracts.ActionNone,
	} {
		fmt.Printf("   %s  %-17s%5d\n", a.Glyph(), string(a)+":", actionCount(stats, a))
	}
	fmt.Printf("   Average DQS Score: %.1f\n", stats.AvgDQS)
}

func actionCount(stats contracts.StatsSnapshot, a contracts.Action) int {
	switch a {
	case contracts.ActionSafe:
		return stats.Safe
	case contracts.ActionReview:
		return stats.Review
	case contracts.ActionEscalate:
		return stats.Escalate
	case contracts.ActionNone:
		return stats.Rejected
	}
	return 0
}

var (
	logsStart  string
	logsEnd    string
	logsExport bool
	logsOut    string
)

// logsCmd queries the backend's persisted history
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Fetch persisted live-log history",
	Long: `Queries the backend for persisted log entries. Prints a table by default;
--export writes the plain-text artifact instead (PII is masked in the
artifact, never in the table).

Bounds are ISO8601 timestamps; an omitted bound is open.

Example:
  sentinel-cli logs
  sentinel-cli logs --start 2026-08-25T00:00:00 --end 2026-08-25T23:59:59
  sentinel-cli logs --export --out /tmp/evidence.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.API.Timeout)
		defer cancel()

		resp, err := newBackendClient().LiveLogs(ctx, logsStart, logsEnd)
		if err != nil {
			fail(err)
		}

		if logsExport {
			path := logsOut
			if path == "" {
				path = appConfig.Export.Path
			}
			f, err := os.Create(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create export file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()

			if err := export.Write(f, resp.Logs, resp.Stats, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write export: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ Exported %d records to %s\n", len(resp.Logs), path)
			return
		}

		if len(resp.Logs) == 0 {
			fmt.Println("No records in range.")
			return
		}

		for _, entry := range resp.Logs {
			fmt.Printf("%s %s  %s  %8.2f  DQS %5.1f  %s\n",
				entry.Action.Glyph(), entry.TransactionID, entry.Timestamp,
				entry.Amount, entry.DQSScore, entry.Action.Short())
		}
		fmt.Println()
		printStats(resp.Stats)
	},
}

var (
	reportReview   int
	reportEscalate int
)

// reportCmd parses a decision-report file
var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Recover structured action records from a decision report",
	Long: `Reads a textual decision report, as produced by the scoring backend for
batch submissions, and prints the action records recovered from it.

When the text yields no records, --review and --escalate counts drive
placeholder synthesis so batch summaries still produce output.

Example:
  sentinel-cli report decision_report.txt
  sentinel-cli report summary.txt --review 2 --escalate 1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read report: %v\n", err)
			os.Exit(1)
		}

		records := report.Parse(string(data), nil, report.Summary{
			ReviewCount:   reportReview,
			EscalateCount: reportEscalate,
		})

		if len(records) == 0 {
			fmt.Println("No action records found in report.")
			return
		}

		fmt.Printf("Recovered %d action records:\n\n", len(records))
		for _, rec := range records {
			fmt.Printf("%s %-16s %-16s %s\n", rec.Action.Glyph(), rec.RecordID, rec.Action, rec.Reason)
		}
	},
}

var clearYes bool

// clearCmd wipes the backend's live log
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the backend's live log",
	Long: `Deletes every persisted entry from the backend's live log. The wipe is
immediate and unrecoverable; --yes skips the confirmation prompt.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !clearYes {
			fmt.Print("Clear the backend live log? This cannot be undone. [y/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if answer := strings.TrimSpace(line); answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), appConfig.API.Timeout)
		defer cancel()

		if err := newBackendClient().ClearLive(ctx); err != nil {
			fail(err)
		}
		fmt.Println("✅ Backend live log cleared")
	},
}

// setKeyCmd registers an API key with the backend
var setKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Register an API key with the scoring backend",
	Long: `Registers the key with the backend's scoring engine. The key applies to
this invocation only; persist it via api.key in sentinel.yaml or the
DQS_SENTINEL_API_KEY environment variable.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.API.Timeout)
		defer cancel()

		if err := newBackendClient().SetAPIKey(ctx, args[0]); err != nil {
			fail(err)
		}
		fmt.Println("✅ API key registered with backend")
		fmt.Println("💡 Persist it with api.key in sentinel.yaml or DQS_SENTINEL_API_KEY")
	},
}

// fail prints a backend error with recovery hints and exits.
func fail(err error) {
	fmt.Fprintln(os.Stderr, api.WrapError(err))
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./sentinel.yaml)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(setKeyCmd)

	logsCmd.Flags().StringVar(&logsStart, "start", "", "Range start (ISO8601, e.g. 2026-08-25T00:00:00)")
	logsCmd.Flags().StringVar(&logsEnd, "end", "", "Range end (ISO8601)")
	logsCmd.Flags().BoolVarP(&logsExport, "export", "x", false, "Write the artifact file instead of printing a table")
	logsCmd.Flags().StringVarP(&logsOut, "out", "o", "", "Artifact path (default export.path from config)")

	reportCmd.Flags().IntVar(&reportReview, "review", 0, "Review count for fallback synthesis")
	reportCmd.Flags().IntVar(&reportEscalate, "escalate", 0, "Escalate count for fallback synthesis")

	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
