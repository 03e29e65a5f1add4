package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
	"github.com/df07/go-blackhole-raytracer/web/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// renderOptions holds the flags that override the loaded config
type renderOptions struct {
	output   string
	frames   int
	width    int
	height   int
	features string
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:          "blackhole",
		Short:        "Progressive renderer for light bending around a black hole",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.toml or .yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	newLogger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	var opts renderOptions
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames and save the accumulated image as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, opts.output, cmd.OutOrStdout(), newLogger())
		},
	}
	renderCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG (default output/render_<timestamp>.png)")
	renderCmd.Flags().IntVarP(&opts.frames, "frames", "f", 0, "frames to accumulate")
	renderCmd.Flags().IntVar(&opts.width, "width", 0, "image width")
	renderCmd.Flags().IntVar(&opts.height, "height", 0, "image height")
	renderCmd.Flags().StringVar(&opts.features, "features", "", "comma-separated features: "+fmt.Sprint(config.FeatureNames()))

	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := newLogger()
			scene, err := renderer.LoadScene(cfg.Sky)
			if err != nil {
				return err
			}
			return server.NewServer(port, cfg, scene, logger).Start()
		},
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "port to serve on")

	var format string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return cfg.Save(cmd.OutOrStdout(), config.Format(format))
		},
	}
	configCmd.Flags().StringVar(&format, "format", string(config.FormatTOML), "output format: toml or yaml")

	root.AddCommand(renderCmd, serveCmd, configCmd)
	return root
}

// loadConfig reads path, or returns the defaults when path is empty
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// apply copies the flags the user set onto cfg and revalidates it
func (o renderOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Image.Frames = o.frames
	}
	if flags.Changed("width") {
		cfg.Image.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Image.Height = o.height
	}
	if flags.Changed("features") {
		if err := cfg.Features.UnmarshalText([]byte(o.features)); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// outputPath returns path, or a timestamped file under output/, and makes
// sure its directory exists
func outputPath(path string, now time.Time) (string, error) {
	if path == "" {
		path = filepath.Join("output", fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return path, nil
}

func runRender(ctx context.Context, cfg *config.Config, output string, out io.Writer, logger *slog.Logger) error {
	scene, err := renderer.LoadScene(cfg.Sky)
	if err != nil {
		return err
	}
	path, err := outputPath(output, time.Now())
	if err != nil {
		return err
	}

	pr := renderer.NewProgressiveRenderer(cfg, scene, logger, nil)
	defer pr.Close()

	logger.Info("rendering",
		"width", cfg.Image.Width,
		"height", cfg.Image.Height,
		"frames", cfg.Image.Frames,
		"features", cfg.Features.String())

	start := time.Now()
	var frames []renderer.FrameStats
	for i := 0; i < cfg.Image.Frames; i++ {
		fs, err := pr.RenderFrame(ctx)
		if err != nil {
			return err
		}
		frames = append(frames, fs)
	}

	if err := writePNG(path, pr.Image()); err != nil {
		return err
	}

	writeStatsTable(out, frames, time.Since(start))
	fmt.Fprintf(out, "Render saved as %s\n", path)
	return nil
}

// writePNG encodes img to path, reporting close errors as well
func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to save PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// writeStatsTable prints per-frame outcome counts and a total row
func writeStatsTable(w io.Writer, frames []renderer.FrameStats, elapsed time.Duration) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Absorbed", "Escaped", "Discarded", "Invalid", "Avg steps", "Luminance", "Time"})

	var total renderer.RenderStats
	for _, fs := range frames {
		total.Merge(fs.Samples)
		table.Append([]string{
			fmt.Sprint(fs.Frame),
			fmt.Sprint(fs.Samples.Absorbed),
			fmt.Sprint(fs.Samples.Escaped),
			fmt.Sprint(fs.Samples.Discarded),
			fmt.Sprint(fs.Samples.Invalid),
			fmt.Sprintf("%.1f", fs.Samples.AverageSteps()),
			fmt.Sprintf("%.4f", fs.MeanLuminance),
			fs.Duration.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprint(total.Absorbed),
		fmt.Sprint(total.Escaped),
		fmt.Sprint(total.Discarded),
		fmt.Sprint(total.Invalid),
		fmt.Sprintf("%.1f", total.AverageSteps()),
		"",
		elapsed.Round(time.Millisecond).String(),
	})
	table.Render()
}
