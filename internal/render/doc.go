// Package render converts SVG documents into the exported asset formats.
//
// All image processing is delegated to external command line tools: a
// rasterizer (inkscape, rendersvg or ImageMagick convert), codec encoders
// (oxipng, cwebp, avif, flif), svgcleaner for optimized vectors and exiftool
// for license metadata. Commands run through an Executor so tests can
// substitute canned behaviour, and every temporary file is written below the
// renderer's scratch directory.
package render
