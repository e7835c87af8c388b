// Package export turns compiled emoji into files on disk.
//
// An export happens in three steps. Check inspects every emoji against the
// requested targets: it resolves output paths, reads and validates the
// source image, computes cache keys and sorts each output into "render" or
// "copy from cache". Run then hands the emoji that need rendering to a
// Scheduler, a fixed pool of workers pulling from one queue, copies cache
// hits into place and finally embeds license metadata into raster outputs.
//
// A worker failure stops the other workers from claiming new emoji; the
// in-flight ones finish, every worker is joined and the run returns a
// WorkerError. Cancelling the context behaves the same way and returns an
// error wrapping context.Canceled.
package export
