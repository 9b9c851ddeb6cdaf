// Package spellcheck is the entry point of the engine.
//
// A Spellchecker owns one dictionary handle, a dispatcher with its worker
// pool, and the completion queue that carries results back. CheckSpelling and
// GetCorrectionsForMisspelling return immediately; their callbacks run later
// on whichever goroutine pumps completions through DispatchCompletions or
// Run, exactly once per accepted request. IsMisspelled, Add, Remove,
// SetDictionary and GetAvailableDictionaries run synchronously on the caller.
//
// The dictionary is guarded by a readers/writer lease: checks share it, while
// loading a dictionary or changing the session word list waits for running
// checks to finish and blocks new ones until it is done.
package spellcheck
