// Package orx tokenizes the orx manifest language.
//
// It splits a stream into logical statements, substitutes `$name` constants,
// and decomposes each statement into a head keyword, positional arguments and
// ordered keyword arguments. Interpreting the statements is left to the
// manifest package.
package orx
