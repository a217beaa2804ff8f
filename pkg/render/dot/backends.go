package dot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-graphviz"
	"github.com/google/uuid"

	apperrors "github.com/matzehuels/enerviz/pkg/errors"
	"github.com/matzehuels/enerviz/pkg/render"
)

// graphvizFormats maps output formats to the engine's native formats.
// PDF is absent: it goes through SVG plus rsvg-convert.
var graphvizFormats = map[string]graphviz.Format{
	FormatSVG: graphviz.SVG,
	FormatPNG: graphviz.PNG,
	FormatJPG: graphviz.JPG,
}

// checkBackend verifies the rendering backend once at construction.
// The graphviz engine is embedded, so this mostly guards the external
// converter needed for PDF.
func checkBackend(format string) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeMissingBackend, err, "graphviz engine unavailable")
	}
	if err := gv.Close(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeMissingBackend, err, "graphviz engine unavailable")
	}

	if format == FormatPDF {
		if err := render.CheckPDFSupport(); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeMissingBackend, err, "pdf converter unavailable")
		}
	}
	return nil
}

// Pipe renders the system at maxDepth and returns the raw output bytes
// in the configured format without touching the filesystem.
func (r *Renderer) Pipe(ctx context.Context, maxDepth int) ([]byte, error) {
	src := r.Source(maxDepth)

	switch r.opts.Format {
	case FormatDOT:
		return []byte(src), nil
	case FormatPDF:
		svg, err := renderBytes(ctx, src, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	default:
		return renderBytes(ctx, src, graphvizFormats[r.opts.Format])
	}
}

// Render renders the system at maxDepth and writes one output file,
// returning its path. The document is rendered fully in memory first,
// so a failed render leaves no partial file behind.
func (r *Renderer) Render(ctx context.Context, maxDepth int) (string, error) {
	data, err := r.Pipe(ctx, maxDepth)
	if err != nil {
		return "", err
	}

	path := r.OutputPath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// View renders the system at maxDepth into a uniquely named temp file
// and opens it with the platform viewer.
func (r *Renderer) View(ctx context.Context, maxDepth int) error {
	data, err := r.Pipe(ctx, maxDepth)
	if err != nil {
		return err
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("enerviz-%s.%s", uuid.NewString(), r.opts.Format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return openViewer(path)
}

// OutputPath returns the file path Render writes to: the configured
// base path with the format as extension.
func (r *Renderer) OutputPath() string {
	return r.base + "." + r.opts.Format
}

// Format returns the configured output format.
func (r *Renderer) Format() string {
	return r.opts.Format
}

func renderBytes(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func openViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open viewer for %s: %w", path, err)
	}
	return nil
}
