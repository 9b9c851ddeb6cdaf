// Package spelling defines the boundary between the spellchecker core and the
// external engine that actually knows how to check words. The Engine interface
// covers dictionary management, whole-text checks, correction lookups and the
// session word list; concrete engines live under internal/platform so the
// dispatch core never depends on a specific spelling algorithm.
package spelling
