// Package exportcache stores exported assets keyed by the content that
// produced them.
//
// Each emoji gets a base key derived from its source image and the colors its
// colormap changes, plus one key per license kind whose payload is embedded
// into the output. Entries live at <root>/<format>/<key>. Vector outputs are
// stored in licensed form and raster outputs in unlicensed form, because
// raster license metadata is written after the asset is copied out.
package exportcache
