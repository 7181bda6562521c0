package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// These options control layout strategy, highlighting, and output formats.
type renderOpts struct {
	output    string   // output file path (single format) or base path (multiple)
	strategy  string   // layout strategy: "force" or "layered"
	formats   []string // output formats: "svg", "png", "json"
	query     string   // free-text highlight query
	allowIDs  []string // exact reference ids to highlight
	focus     bool     // frame the matched nodes instead of the full content
	width     float64  // viewport width in pixels
	height    float64  // viewport height in pixels
	scale     float64  // raster density multiplier for PNG
	randomize bool     // scatter initial force placement
	seed      uint64   // random seed when randomize is set
	rankDir   string   // layered flow direction: TB, BT, LR, RL
	refresh   bool     // bypass the cache
}

// newRenderCmd creates the render command for generating visualizations.
// It accepts one or more chain files; multiple files are merged into a
// single namespaced scene.
//
// Default settings:
//   - strategy: force
//   - formats: svg
//   - width: 800px, height: 600px
//   - scale: 2x (PNG only)
func newRenderCmd(configPath *string) *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
		idsStr     string
	)

	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render fraud chain files to SVG, PNG, or JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.allowIDs = parseIDs(idsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), args, cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "layout strategy: force (default), layered")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "highlight nodes matching a free-text query")
	cmd.Flags().StringVar(&idsStr, "ids", "", "highlight nodes by exact reference id (comma-separated, overrides --query)")
	cmd.Flags().BoolVar(&opts.focus, "focus", false, "fit the frame to the highlighted nodes")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG density multiplier")
	cmd.Flags().BoolVar(&opts.randomize, "randomize", false, "randomize initial force placement")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for --randomize")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "layered flow direction: TB (default), BT, LR, RL")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute instead of using cached results")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseIDs parses the --ids flag into a slice, dropping empty entries.
func parseIDs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// runRender loads the chains, runs the pipeline, and writes one file per
// requested format.
func runRender(ctx context.Context, inputs []string, cfg Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	chains, err := chain.ReadChainFiles(inputs)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d chain file(s)", len(chains))

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	popts := pipeline.Options{
		Strategy:  opts.strategy,
		Randomize: opts.randomize,
		Seed:      opts.seed,
		RankDir:   opts.rankDir,
		Refresh:   opts.refresh,
		Query:     opts.query,
		AllowIDs:  opts.allowIDs,
		Focus:     opts.focus,
		Width:     opts.width,
		Height:    opts.height,
		Scale:     opts.scale,
		Formats:   opts.formats,
		Logger:    logger,
	}
	cfg.applyTo(&popts)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	result, err := pipeline.NewRunner(store, nil, logger).Execute(ctx, chains, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)

	base := basePath(opts.output, result.Scene.ChainID())
	for _, format := range popts.Formats {
		path := outputPath(base, opts.output, format, len(popts.Formats))
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	prog.done(fmt.Sprintf("Rendered %d chain(s)", len(chains)))
	return nil
}

// basePath derives the base output path. With no --output the exported
// files are named after the chain, e.g. fraud_chain_abc123.png.
func basePath(output, chainID string) string {
	if output == "" {
		return fmt.Sprintf("fraud_chain_%s", chainID)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath picks the file name for one format. An explicit --output with
// a matching extension is used verbatim when a single format is requested.
func outputPath(base, output, format string, formatCount int) string {
	if output != "" && formatCount == 1 && filepath.Ext(output) == "."+format {
		return output
	}
	return base + "." + format
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
