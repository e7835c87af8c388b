// Package destpath parses export formats and resolves output path templates.
//
// A template is literal text with percent-codes that expand against a
// compiled emoji and a target format. Resolution distinguishes hard failures
// (ErrUnresolved) from ErrFiltered, which marks an emoji that is
// intentionally absent from codepoint-named output and should be skipped.
package destpath
