package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/enerviz/pkg/cache"
	"github.com/matzehuels/enerviz/pkg/energy"
	"github.com/matzehuels/enerviz/pkg/render/dot"
)

// renderOpts holds the command-line flags shared by render, source, and view.
type renderOpts struct {
	output   string   // output file path, extension selects format
	format   string   // explicit format override
	depth    int      // depth cutoff, negative renders all levels
	legend   bool     // include a stencil legend cluster
	txtWidth int      // label wrap width
	fontSize int      // label font size
	attrs    []string // key=value graph attributes passed through to graphviz
	config   string   // options file path
	noCache  bool     // disable the artifact cache
}

func (o *renderOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.depth, "depth", "d", dot.Unbounded, "maximum nesting depth to draw (default: all levels)")
	cmd.Flags().BoolVar(&o.legend, "legend", false, "include a stencil legend")
	cmd.Flags().IntVar(&o.txtWidth, "txt-width", 0, "label line width before wrapping")
	cmd.Flags().IntVar(&o.fontSize, "fontsize", 0, "label font size")
	cmd.Flags().StringArrayVar(&o.attrs, "graph-attr", nil, "graph attribute passed through to graphviz (key=value, repeatable)")
	cmd.Flags().StringVar(&o.config, "config", "", "options file (default: ./enerviz.toml when present)")
}

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [system.json]",
		Short: "Render an energy system to an image or document file",
		Long: `Render an energy system document to a file.

The system is flattened at the chosen depth: subnetworks within the
cutoff draw as clusters, deeper subtrees collapse into dashed
placeholder nodes, and connections crossing the cutoff are re-routed to
those placeholders.

The output format is taken from --format, or from the output file
extension, and defaults to pdf. Rendered artifacts are cached locally;
use --no-cache to force a fresh render.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <system name>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), svg, png, jpg, dot")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// newSourceCmd creates the source command.
func newSourceCmd() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "source [system.json]",
		Short: "Print the DOT description of an energy system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(cmd.Context(), args[0], opts)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// newViewCmd creates the view command.
func newViewCmd() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "view [system.json]",
		Short: "Render an energy system and open it in a viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), args[0], opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), svg, png, jpg")

	return cmd
}

// =============================================================================
// Command implementations
// =============================================================================

func runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	raw, system, err := loadSystem(input, logger)
	if err != nil {
		return err
	}
	ropts, err := renderOptions(input, opts)
	if err != nil {
		return err
	}
	ropts.Logger = logger
	renderer, err := dot.New(system, ropts)
	if err != nil {
		return err
	}

	store := openCache(opts.noCache, logger)
	defer store.Close()

	// The key is built from the merged options, not the raw flags, so a
	// change to enerviz.toml invalidates cached artifacts the same way a
	// changed flag does.
	key := cache.RenderKey(cache.Hash(raw), cache.RenderKeyOpts{
		MaxDepth: opts.depth,
		Format:   renderer.Format(),
		Legend:   ropts.Legend,
		TxtWidth: ropts.TxtWidth,
		FontSize: ropts.FontSize,
		Attrs:    ropts.GraphAttrs,
	})

	data, hit, err := store.Get(ctx, key)
	if err != nil {
		logger.Debug("cache lookup failed", "err", err)
	}

	if !hit {
		p := newProgress(logger)
		spinner := newSpinnerWithContext(ctx, "Rendering...")
		spinner.Start()

		data, err = renderer.Pipe(ctx, opts.depth)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render %s: %w", input, err)
		}
		spinner.Stop()
		p.done(fmt.Sprintf("Rendered %d nodes", countNodes(system)))

		if err := store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			logger.Debug("cache store failed", "err", err)
		}
	}

	path := renderer.OutputPath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Rendered %s", input)
	printFile(path)
	printStats(countNodes(system), len(system.Busses()), hit)
	return nil
}

func runSource(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	_, system, err := loadSystem(input, logger)
	if err != nil {
		return err
	}

	// Source never touches the backend, but the renderer still
	// validates options the same way render does.
	ropts, err := renderOptions(input, opts)
	if err != nil {
		return err
	}
	ropts.Format = dot.FormatDOT
	ropts.Logger = logger
	renderer, err := dot.New(system, ropts)
	if err != nil {
		return err
	}

	fmt.Print(renderer.Source(opts.depth))
	return nil
}

func runView(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	_, system, err := loadSystem(input, logger)
	if err != nil {
		return err
	}
	ropts, err := renderOptions(input, opts)
	if err != nil {
		return err
	}
	ropts.Logger = logger
	renderer, err := dot.New(system, ropts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	err = renderer.View(ctx, opts.depth)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("view %s: %w", input, err)
	}
	spinner.Stop()

	printSuccess("Opened %s", input)
	return nil
}

// =============================================================================
// Shared plumbing
// =============================================================================

// loadSystem reads the document once and returns both the raw bytes
// (for cache keying) and the decoded system.
func loadSystem(path string, logger *log.Logger) ([]byte, *energy.System, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	system, err := energy.ReadSystem(bytes.NewReader(raw), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return raw, system, nil
}

// renderOptions merges the options file with command-line flags into
// the effective renderer options. Flags win over the file. Everything
// that shapes the rendered artifact goes through here, so both the
// renderer and the cache key see the same values.
func renderOptions(input string, opts renderOpts) (dot.Options, error) {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return dot.Options{}, err
	}

	format := opts.format
	if format == "" {
		format = cfg.Format
	}
	txtWidth := opts.txtWidth
	if txtWidth == 0 {
		txtWidth = cfg.TxtWidth
	}
	fontSize := opts.fontSize
	if fontSize == 0 {
		fontSize = cfg.FontSize
	}

	attrs := cfg.Attrs
	if len(opts.attrs) > 0 {
		if attrs == nil {
			attrs = make(map[string]string)
		}
		for k, v := range attrMap(opts.attrs) {
			attrs[k] = v
		}
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	return dot.Options{
		Filepath:   output,
		Format:     format,
		Legend:     opts.legend || cfg.Legend,
		TxtWidth:   txtWidth,
		FontSize:   fontSize,
		GraphAttrs: attrs,
	}, nil
}

// openCache returns the artifact cache, falling back to a null cache
// when disabled or unavailable.
func openCache(disabled bool, logger *log.Logger) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Debug("cache unavailable", "err", err)
		return cache.NewNullCache()
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Debug("cache unavailable", "err", err)
		return cache.NewNullCache()
	}
	return store
}

// cacheDir returns the artifact cache directory (~/.cache/enerviz).
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "enerviz"), nil
}

// attrMap parses repeated key=value flags.
func attrMap(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		attrs[k] = v
	}
	return attrs
}

func countNodes(system *energy.System) int {
	count := 0
	system.Walk(func(*energy.Node) bool {
		count++
		return true
	})
	return count
}
