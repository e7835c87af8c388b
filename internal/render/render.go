package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"orxport/internal/logging"
	"orxport/internal/services"
)

// Codec names a raster encoding produced from a rendered PNG.
type Codec string

const (
	CodecPNGC Codec = "pngc"
	CodecWebP Codec = "webp"
	CodecAVIF Codec = "avif"
	CodecFLIF Codec = "flif"
)

const (
	RasterizerInkscape    = "inkscape"
	RasterizerRendersvg   = "rendersvg"
	RasterizerImageMagick = "imagemagick"
)

// Rasterizers lists the supported rasterizer names.
var Rasterizers = []string{RasterizerInkscape, RasterizerRendersvg, RasterizerImageMagick}

// KV is one metadata tag and value.
type KV struct {
	Key   string
	Value string
}

// Renderer is the boundary between the export pipeline and image tooling.
type Renderer interface {
	RenderRaster(ctx context.Context, svg []byte, size int) ([]byte, error)
	Recompress(ctx context.Context, png []byte, codec Codec) ([]byte, error)
	EmbedMetadata(ctx context.Context, paths []string, meta []KV, maxBatch int) error
	OptimizeVector(ctx context.Context, svg []byte) ([]byte, error)
}

// Tools names the binaries invoked for each step.
type Tools struct {
	Inkscape   string
	Rendersvg  string
	Convert    string
	Cwebp      string
	Avif       string
	Flif       string
	Oxipng     string
	Svgcleaner string
	Exiftool   string
}

// DefaultTools returns the conventional binary names.
func DefaultTools() Tools {
	return Tools{
		Inkscape:   "inkscape",
		Rendersvg:  "rendersvg",
		Convert:    "convert",
		Cwebp:      "cwebp",
		Avif:       "avif",
		Flif:       "flif",
		Oxipng:     "oxipng",
		Svgcleaner: "svgcleaner",
		Exiftool:   "exiftool",
	}
}

// CLI renders through external command line tools.
type CLI struct {
	rasterizer string
	tools      Tools
	scratch    string
	exec       Executor
	logger     *slog.Logger
}

// Option customizes NewCLI.
type Option func(*CLI)

// WithExecutor allows injecting a custom executor for testing.
func WithExecutor(exec Executor) Option {
	return func(r *CLI) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger routes tool invocations to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *CLI) {
		r.logger = logging.NewComponentLogger(logger, "render")
	}
}

// NewCLI builds a renderer using the named rasterizer. Temporary files are
// created under scratch, or the system temp directory when scratch is empty.
func NewCLI(rasterizer string, tools Tools, scratch string, opts ...Option) (*CLI, error) {
	if !slices.Contains(Rasterizers, rasterizer) {
		return nil, services.Wrap(services.ErrConfiguration, "render", "rasterizer",
			fmt.Sprintf("unknown rasterizer %q (expected one of %v)", rasterizer, Rasterizers), nil)
	}
	r := &CLI{
		rasterizer: rasterizer,
		tools:      tools,
		scratch:    scratch,
		exec:       commandExecutor{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// In returns a copy of the renderer whose temporary files live in dir.
func (r *CLI) In(dir string) *CLI {
	clone := *r
	clone.scratch = dir
	return &clone
}

// Rasterizer returns the configured rasterizer name.
func (r *CLI) Rasterizer() string {
	return r.rasterizer
}

// RenderRaster renders svg to a square PNG of the given edge length.
func (r *CLI) RenderRaster(ctx context.Context, svg []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid raster size %d", services.ErrValidation, size)
	}
	in, err := r.tempFile("render-*.svg", svg)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)
	out, err := r.tempFile("render-*.png", nil)
	if err != nil {
		return nil, err
	}
	defer os.Remove(out)

	tool, args := r.rasterCommand(in, out, size)
	if err := r.run(ctx, tool, args...); err != nil {
		return nil, err
	}
	return readOutput(tool, out)
}

func (r *CLI) rasterCommand(in, out string, size int) (string, []string) {
	s := strconv.Itoa(size)
	switch r.rasterizer {
	case RasterizerRendersvg:
		return r.tools.Rendersvg, []string{"-w", s, "-h", s, in, out}
	case RasterizerImageMagick:
		density := strconv.FormatFloat(float64(size)/32*128, 'f', -1, 64)
		return r.tools.Convert, []string{"-background", "none", "-density", density, "-resize", s + "x" + s, in, out}
	default:
		absIn, _ := filepath.Abs(in)
		absOut, _ := filepath.Abs(out)
		return r.tools.Inkscape, []string{absIn, "--export-png=" + absOut, "-h", s, "-w", s}
	}
}

// Recompress converts a rendered PNG into codec.
func (r *CLI) Recompress(ctx context.Context, png []byte, codec Codec) ([]byte, error) {
	ext, ok := codecExtensions[codec]
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", services.ErrValidation, codec)
	}
	in, err := r.tempFile("encode-*.png", png)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)
	out, err := r.tempFile("encode-*"+ext, nil)
	if err != nil {
		return nil, err
	}
	defer os.Remove(out)

	tool, args := r.codecCommand(codec, in, out)
	if err := r.run(ctx, tool, args...); err != nil {
		return nil, err
	}
	return readOutput(tool, out)
}

var codecExtensions = map[Codec]string{
	CodecPNGC: ".png",
	CodecWebP: ".webp",
	CodecAVIF: ".avif",
	CodecFLIF: ".flif",
}

func (r *CLI) codecCommand(codec Codec, in, out string) (string, []string) {
	switch codec {
	case CodecWebP:
		return r.tools.Cwebp, []string{"-lossless", "-quiet", in, "-o", out}
	case CodecAVIF:
		return r.tools.Avif, []string{"-e", in, "-o", out, "--lossless"}
	case CodecFLIF:
		return r.tools.Flif, []string{"-e", "--overwrite", "-Q100", in, out}
	default:
		return r.tools.Oxipng, []string{in, "--out", out, "--quiet"}
	}
}

// OptimizeVector runs svgcleaner over svg, keeping its metadata.
func (r *CLI) OptimizeVector(ctx context.Context, svg []byte) ([]byte, error) {
	in, err := r.tempFile("clean-*.svg", svg)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)
	out, err := r.tempFile("clean-*.svg", nil)
	if err != nil {
		return nil, err
	}
	defer os.Remove(out)

	if err := r.run(ctx, r.tools.Svgcleaner, in, out, "--remove-metadata=no", "--quiet"); err != nil {
		return nil, err
	}
	return readOutput(r.tools.Svgcleaner, out)
}

// EmbedMetadata writes meta into every file in paths with exiftool, at most
// maxBatch files per invocation. A non-positive maxBatch means one batch.
func (r *CLI) EmbedMetadata(ctx context.Context, paths []string, meta []KV, maxBatch int) error {
	if len(paths) == 0 || len(meta) == 0 {
		return nil
	}
	if maxBatch <= 0 {
		maxBatch = len(paths)
	}
	tags := make([]string, 0, len(meta)+1)
	for _, kv := range meta {
		tags = append(tags, "-"+kv.Key+"="+kv.Value)
	}
	tags = append(tags, "-overwrite_original")

	for batch := range slices.Chunk(paths, maxBatch) {
		if err := ctx.Err(); err != nil {
			return err
		}
		args := append(slices.Clone(tags), batch...)
		if err := r.run(ctx, r.tools.Exiftool, args...); err != nil {
			return err
		}
		r.logger.DebugContext(ctx, "embedded license metadata", logging.Int("files", len(batch)))
	}
	return nil
}

func (r *CLI) tempFile(pattern string, data []byte) (string, error) {
	dir := r.scratch
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", services.Wrap(services.ErrIO, "render", "scratch", "create scratch directory", err)
		}
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "render", "scratch", "create temporary file", err)
	}
	name := f.Name()
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(name)
			return "", services.Wrap(services.ErrIO, "render", "scratch", "write temporary file", err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", services.Wrap(services.ErrIO, "render", "scratch", "close temporary file", err)
	}
	return name, nil
}

func readOutput(tool, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "render", tool, "read output", err)
	}
	if len(data) == 0 {
		return nil, &ToolError{Tool: tool, ExitCode: 0, Output: "produced no output"}
	}
	return data, nil
}
