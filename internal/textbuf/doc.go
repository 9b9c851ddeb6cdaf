// Package textbuf provides Buffer, an immutable snapshot of text held as
// UTF-16 code units. A Buffer never aliases the memory it was built from, so
// it can be handed to a worker goroutine while the caller keeps mutating its
// own copy. Offsets reported against a Buffer are valid against the caller's
// original UTF-16 representation of the text.
package textbuf
