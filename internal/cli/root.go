// Package cli implements the erode command-line driver: load or synthesize
// a heightmap, run the erosion pipeline, and report what happened. Grounded
// on MeKo-Christian-WaterColorMap's internal/cmd package (cobra root command
// with viper-bound persistent flags plus one subcommand per operation), but
// the ambient logger is the repo's own zerolog-based internal/logging
// rather than watercolormap's slog, matching how logging is done everywhere
// else in this module.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"geomorph/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "erode",
	Short: "Hydraulic, glacial, and fluvial terrain erosion",
	Long: `erode simulates river, hydraulic, and glacial erosion over a heightmap and
scores the result against real-world drainage-network statistics.`,
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./erode.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("erode")
	}

	viper.SetEnvPrefix("ERODE")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // config file is optional; flags/env still apply
}

func initLogging() {
	logging.InitLogger()

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, defaulting to info\n", viper.GetString("log-level"))
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
