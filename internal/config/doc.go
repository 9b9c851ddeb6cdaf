// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to the settings of the spellcheck engine and its host while keeping
// configuration details separate from the dispatch logic.
package config
