package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"geomorph/internal/erosion"
	"geomorph/internal/geomorph"
	"geomorph/internal/heightmapio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the erosion pipeline against a heightmap",
	Long: `run loads a heightmap (or synthesizes one if --input is omitted), erodes it
with the river, hydraulic, glacial, and meander stages, then writes the
result and prints aggregate stats plus a realism score.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("input", "", "Input heightmap PNG (16-bit grayscale); omit to synthesize one")
	runCmd.Flags().String("output", "eroded.png", "Output heightmap PNG path")
	runCmd.Flags().Int("width", 512, "Synthesized heightmap width (ignored with --input)")
	runCmd.Flags().Int("height", 512, "Synthesized heightmap height (ignored with --input)")
	runCmd.Flags().Int64("seed", 1337, "Deterministic seed for synthesis and stochastic erosion stages")
	runCmd.Flags().String("preset", "normal", "Erosion preset: none, minimal, normal, dramatic, realistic")
	runCmd.Flags().Bool("hires", false, "Enable hi-res \"crumple\" erosion (upscale, erode, downscale)")
	runCmd.Flags().Bool("analysis", true, "Run geomorphometry analysis and print a realism score")
	runCmd.Flags().Duration("timeout", 0, "Abort the run after this long (0 disables the timeout)")

	bindFlags := []string{"input", "output", "width", "height", "seed", "preset", "hires", "analysis", "timeout"}
	for _, name := range bindFlags {
		if err := viper.BindPFlag("run."+name, runCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	input := viper.GetString("run.input")
	output := viper.GetString("run.output")
	width := viper.GetInt("run.width")
	height := viper.GetInt("run.height")
	seed := viper.GetInt64("run.seed")
	presetName := viper.GetString("run.preset")
	hires := viper.GetBool("run.hires")
	analysis := viper.GetBool("run.analysis")
	timeout := viper.GetDuration("run.timeout")

	preset, err := parsePreset(presetName)
	if err != nil {
		return err
	}

	var heightmap = synthesizeHeightmap(width, height, seed)
	if input != "" {
		heightmap, err = heightmapio.Load(input)
		if err != nil {
			return fmt.Errorf("load input heightmap: %w", err)
		}
	}

	params := erosion.FromPreset(preset)
	params.EnableAnalysis = analysis
	if !hires {
		params.SimulationScale = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, timeout)
		defer timeoutCancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	pipeline := erosion.NewPipeline()
	start := time.Now()
	stats, results, err := pipeline.Run(ctx, heightmap, erosion.AuxMaps{}, params, uint64(seed))
	if err != nil {
		return fmt.Errorf("erosion pipeline: %w", err)
	}
	elapsed := time.Since(start)

	if err := heightmapio.Save(output, heightmap); err != nil {
		return fmt.Errorf("save output heightmap: %w", err)
	}

	printSummary(cmd, output, elapsed, stats, results)
	return nil
}

func parsePreset(name string) (erosion.Preset, error) {
	switch strings.ToLower(name) {
	case "none":
		return erosion.PresetNone, nil
	case "minimal":
		return erosion.PresetMinimal, nil
	case "normal", "":
		return erosion.PresetNormal, nil
	case "dramatic":
		return erosion.PresetDramatic, nil
	case "realistic":
		return erosion.PresetRealistic, nil
	default:
		return erosion.PresetNone, fmt.Errorf("unknown preset %q: must be one of none, minimal, normal, dramatic, realistic", name)
	}
}

func printSummary(cmd *cobra.Command, output string, elapsed time.Duration, stats erosion.Stats, results *geomorph.Results) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s (%s)\n", output, elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  eroded:    %.1f\n", stats.TotalEroded)
	fmt.Fprintf(out, "  deposited: %.1f\n", stats.TotalDeposited)
	fmt.Fprintf(out, "  rivers:    %d\n", len(stats.RiverLengths))
	for _, w := range stats.Warnings {
		fmt.Fprintf(out, "  warning:   %s\n", w.Message)
	}
	if results != nil {
		fmt.Fprintf(out, "  realism score: %.1f/100\n", results.RealismScore())
	}
}
