package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tidystat/internal/config"
	"tidystat/internal/telemetry"
	"tidystat/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// appMetrics is shared by every command of one process.
var appMetrics = telemetry.NewMetrics()

// flags that only steer a single invocation and are never read from config
var localOnlyFlags = map[string]bool{
	"config":       true,
	"help":         true,
	"compare":      true,
	"save":         true,
	"watch":        true,
	"fixed-stride": true,
	"limit":        true,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tidystat",
	Short: "Timing averages and clang-tidy check statistics",
	Long: `tidystat averages the output of repeated 'time' runs and measures how many
of the potential checked-arithmetic replacements a clang-tidy check really
applies, by running the tool once per check configuration.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(fmt.Sprintf("Error: %v", err)))
		stop()
		exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
}

// initConfig loads configuration for the command about to run, binds its
// flags, sets up logging and starts the metrics server when configured.
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.Load(cfgFile); err != nil {
		return err
	}
	if err := bindFlags(cmd); err != nil {
		return err
	}
	if err := config.ValidateConfig(); err != nil {
		return err
	}

	telemetry.InitLogger(viper.GetBool(config.KeyVerbose), viper.GetString(config.KeyLogFile))

	if addr := viper.GetString(config.KeyMetricsAddr); addr != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		go func() {
			if err := telemetry.StartMetricsServer(ctx, addr, appMetrics); err != nil {
				telemetry.LogError("Failed to start metrics server", err, "addr", addr)
			}
		}()
	}
	return nil
}

// bindFlags binds every flag of cmd to the viper key of the same name, with
// dashes turned into underscores.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || localOnlyFlags[f.Name] {
			return
		}
		err = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}
