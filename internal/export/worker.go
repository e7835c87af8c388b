package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"orxport/internal/destpath"
	"orxport/internal/exportcache"
	"orxport/internal/fileutil"
	"orxport/internal/logging"
	"orxport/internal/manifest"
	"orxport/internal/render"
	"orxport/internal/services"
	"orxport/internal/svg"
)

var codecs = map[destpath.Family]render.Codec{
	destpath.FamilyPNGC: render.CodecPNGC,
	destpath.FamilyWebP: render.CodecWebP,
	destpath.FamilyAVIF: render.CodecAVIF,
	destpath.FamilyFLIF: render.CodecFLIF,
}

// worker holds the per-worker state: its renderer writes temporary files to
// a directory no other worker uses.
type worker struct {
	manifest *manifest.Manifest
	renderer render.Renderer
	cache    *exportcache.Cache
	logger   *slog.Logger
}

// export renders every pending output of job and stores cacheable results.
func (w *worker) export(ctx context.Context, job *Job) error {
	logger := logging.WithContext(ctx, w.logger)
	doc := job.Source
	if from, to, ok := w.manifest.ColorPalettes(job.Emoji); ok {
		doc = svg.Translate(doc, from, to)
	}

	// Raster renders are shared between formats of the same size.
	rasters := make(map[int][]byte)
	for _, out := range job.Pending() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
			return services.Wrap(services.ErrIO, "export", "mkdir",
				fmt.Sprintf("create output directory for %s", out.Path), err)
		}
		data, err := w.produce(ctx, doc, out, rasters)
		if err != nil {
			return fmt.Errorf("%s: %w", out.Format.Name, err)
		}
		if err := fileutil.WriteFileAtomic(out.Path, data); err != nil {
			return services.Wrap(services.ErrIO, "export", "write", out.Path, err)
		}
		if w.cache != nil {
			if err := w.cache.Store(job.Emoji, out.Format, exportcache.Mode(out.Format, out.License), out.Path); err != nil {
				return err
			}
		}
		logger.Debug("exported",
			logging.String("format", out.Format.Name),
			logging.String("path", out.Path),
		)
	}
	return nil
}

func (w *worker) produce(ctx context.Context, doc []byte, out Output, rasters map[int][]byte) ([]byte, error) {
	switch out.Format.Family {
	case destpath.FamilySVG:
		return w.licensedVector(doc, out)
	case destpath.FamilySVGO:
		licensed, err := w.licensedVector(doc, out)
		if err != nil {
			return nil, err
		}
		return w.renderer.OptimizeVector(ctx, licensed)
	}

	png, ok := rasters[out.Format.Size]
	if !ok {
		var err error
		png, err = w.renderer.RenderRaster(ctx, doc, out.Format.Size)
		if err != nil {
			return nil, err
		}
		rasters[out.Format.Size] = png
	}
	if out.Format.Family == destpath.FamilyPNG {
		return png, nil
	}
	codec, ok := codecs[out.Format.Family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", destpath.ErrInvalidFormat, out.Format.Name)
	}
	return w.renderer.Recompress(ctx, png, codec)
}

func (w *worker) licensedVector(doc []byte, out Output) ([]byte, error) {
	if !out.License {
		return doc, nil
	}
	license, ok := w.manifest.License(manifest.LicenseSVG)
	if !ok {
		return doc, nil
	}
	return svg.AddLicense(doc, license.Text)
}
