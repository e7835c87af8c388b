package config

const (
	defaultInputDir       = "in"
	defaultOutputDir      = "out"
	defaultManifest       = "manifest.orx"
	defaultNaming         = "%f/%s"
	defaultFormat         = "svg"
	defaultRenderer       = "inkscape"
	defaultThreads        = 1
	defaultMaxBatch       = 1000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultCacheEnabled   = true
	defaultHistoryEnabled = true
)

// Renderers lists the rasterizers an export can be configured with.
var Renderers = []string{"inkscape", "rendersvg", "imagemagick"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:    defaultInputDir,
			OutputDir:   defaultOutputDir,
			CacheDir:    defaultCacheDir(),
			HistoryPath: defaultHistoryPath(),
		},
		Export: Export{
			Manifest: defaultManifest,
			Naming:   defaultNaming,
			Formats:  []string{defaultFormat},
			Renderer: defaultRenderer,
			Threads:  defaultThreads,
			License:  true,
			MaxBatch: defaultMaxBatch,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
		},
		Tools: Tools{
			Inkscape:   "inkscape",
			Rendersvg:  "rendersvg",
			Convert:    "convert",
			Cwebp:      "cwebp",
			Avif:       "avif",
			Flif:       "flif",
			Oxipng:     "oxipng",
			Svgcleaner: "svgcleaner",
			Exiftool:   "exiftool",
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
