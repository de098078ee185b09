package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nanokv/nanokv/internal/arena"
	"github.com/nanokv/nanokv/internal/command"
	"github.com/nanokv/nanokv/internal/config"
	"github.com/nanokv/nanokv/internal/keyspace"
	"github.com/nanokv/nanokv/internal/metrics"
	"github.com/nanokv/nanokv/lib/logger"
	"github.com/nanokv/nanokv/tcp"
)

// arenaPollInterval is how often pollArenaUsage refreshes the
// arena_bytes_in_use gauge.
const arenaPollInterval = 5 * time.Second

// serveFlags holds the values cobra binds --config/--address/etc into.
// Any flag not passed on the command line leaves the corresponding
// config.Config field untouched; an explicitly passed zero value still
// overrides it (§10.3: CLI flags override file values, file values
// override built-in defaults).
var serveFlags struct {
	ConfigPath         string
	Address            string
	Port               int
	ReusePort          bool
	ArenaCapacityBytes int
	RXBufferBytes      int
	MetricsAddr        string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nanokv server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(serveFlags.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		applyFlagOverrides(&cfg, cmd.Flags())

		logger.Setup(&cfg.Logging)

		a := arena.New(cfg.ArenaCapacityBytes)
		ks := keyspace.New(a)
		dispatcher := command.New(ks)

		metrics.ArenaBytesCapacity.Set(float64(a.Len()))
		go pollArenaUsage(a)

		go func() {
			logger.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logger.Errorf("metrics server stopped: %v", err)
			}
		}()

		serverCfg := &tcp.Config{
			Address:          cfg.Address,
			Port:             cfg.Port,
			MaxConnect:       cfg.MaxConnect,
			Timeout:          cfg.Timeout,
			ReusePort:        cfg.ReusePort,
			RXBufferBytes:    cfg.RXBufferBytes,
			MaxArrayElements: cfg.MaxArrayElements,
			MaxBulkBytes:     cfg.MaxBulkBytes,
		}

		if err := tcp.ListenAndServeWithSignal(serverCfg, dispatcher); err != nil {
			logger.Fatalf("server stopped: %v", err)
		}
	},
	Example: "# nanokv serve --config nanokv.yaml --port 6379",
}

// applyFlagOverrides copies any explicitly-set flag onto cfg. flags.Changed
// distinguishes "the user passed --port 0" from "the user didn't pass
// --port at all", which a plain zero-value check cannot.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("address") {
		cfg.Address = serveFlags.Address
	}
	if flags.Changed("port") {
		cfg.Port = serveFlags.Port
	}
	if flags.Changed("reuse-port") {
		cfg.ReusePort = serveFlags.ReusePort
	}
	if flags.Changed("arena-capacity-bytes") {
		cfg.ArenaCapacityBytes = serveFlags.ArenaCapacityBytes
	}
	if flags.Changed("rx-buffer-bytes") {
		cfg.RXBufferBytes = serveFlags.RXBufferBytes
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = serveFlags.MetricsAddr
	}
}

// pollArenaUsage mirrors the arena's cursor into the arena_bytes_in_use
// gauge on a steady cadence. It never touches the event loop directly:
// Arena.Used is the one method a non-event-loop goroutine is allowed to
// call, guarded by Arena's own mutex (§5).
func pollArenaUsage(a *arena.Arena) {
	ticker := time.NewTicker(arenaPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		metrics.ArenaBytesInUse.Set(float64(a.Used()))
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.ConfigPath, "config", "", "Path to YAML config file")
	serveCmd.Flags().StringVar(&serveFlags.Address, "address", "", "Bind address (overrides config file)")
	serveCmd.Flags().IntVar(&serveFlags.Port, "port", 0, "Bind port (overrides config file)")
	serveCmd.Flags().BoolVar(&serveFlags.ReusePort, "reuse-port", false, "Enable SO_REUSEPORT for multi-instance scale-out")
	serveCmd.Flags().IntVar(&serveFlags.ArenaCapacityBytes, "arena-capacity-bytes", 0, "Value arena capacity in bytes (overrides config file)")
	serveCmd.Flags().IntVar(&serveFlags.RXBufferBytes, "rx-buffer-bytes", 0, "Per-connection receive buffer size (overrides config file)")
	serveCmd.Flags().StringVar(&serveFlags.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (overrides config file)")
	rootCmd.AddCommand(serveCmd)
}
