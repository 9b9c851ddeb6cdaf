// Package dictionary owns the lifetime of the loaded dictionary and the spell
// engine instance it is loaded into.
//
// A Handle hands out shared read access for checks and exclusive access for
// anything that mutates engine state (loading a dictionary, adding or
// removing session words). Raw dictionary contents supplied by the caller are
// pinned by the handle and released exactly once, after every reader of the
// generation they belong to has finished.
package dictionary
