package preflight

import (
	"fmt"
	"os"
	"slices"

	"golang.org/x/sys/unix"

	"orxport/internal/config"
	"orxport/internal/deps"
	"orxport/internal/destpath"
	"orxport/internal/render"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, ok string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, ok)}
}

// Requirements lists the external tools needed to export formats with the
// configured renderer. Unparseable format names are ignored here; the export
// command rejects them separately.
func Requirements(cfg *config.Config, formats []string) []deps.Requirement {
	var families []destpath.Family
	exif := false
	for _, name := range formats {
		format, err := destpath.ParseFormat(name)
		if err != nil {
			continue
		}
		exif = exif || format.SupportsEXIF()
		if !slices.Contains(families, format.Family) {
			families = append(families, format.Family)
		}
	}

	tools := cfg.Tools
	var requirements []deps.Requirement
	raster := false
	for _, family := range families {
		switch family {
		case destpath.FamilySVGO:
			requirements = append(requirements, deps.Requirement{
				Name: "svgcleaner", Command: tools.Svgcleaner, Description: "Required for svgo output",
			})
		case destpath.FamilyPNGC:
			requirements = append(requirements, deps.Requirement{
				Name: "oxipng", Command: tools.Oxipng, Description: "Required for pngc output",
			})
		case destpath.FamilyWebP:
			requirements = append(requirements, deps.Requirement{
				Name: "cwebp", Command: tools.Cwebp, Description: "Required for webp output",
			})
		case destpath.FamilyAVIF:
			requirements = append(requirements, deps.Requirement{
				Name: "avif", Command: tools.Avif, Description: "Required for avif output",
			})
		case destpath.FamilyFLIF:
			requirements = append(requirements, deps.Requirement{
				Name: "flif", Command: tools.Flif, Description: "Required for flif output",
			})
		}
		if family != destpath.FamilySVG && family != destpath.FamilySVGO {
			raster = true
		}
	}

	if raster {
		requirements = append([]deps.Requirement{rasterizerRequirement(cfg)}, requirements...)
	}
	if exif {
		requirements = append(requirements, deps.Requirement{
			Name:        "exiftool",
			Command:     tools.Exiftool,
			Description: "Embeds license metadata in raster output",
			Optional:    !cfg.Export.License,
		})
	}
	return requirements
}

func rasterizerRequirement(cfg *config.Config) deps.Requirement {
	req := deps.Requirement{Name: cfg.Export.Renderer, Description: "Required for raster output"}
	switch cfg.Export.Renderer {
	case render.RasterizerRendersvg:
		req.Command = cfg.Tools.Rendersvg
	case render.RasterizerImageMagick:
		req.Command = cfg.Tools.Convert
	default:
		req.Command = cfg.Tools.Inkscape
	}
	return req
}

// CheckSystemDeps evaluates the tools needed for the configured export formats.
// Both the export and status commands use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg, cfg.Export.Formats))
}
