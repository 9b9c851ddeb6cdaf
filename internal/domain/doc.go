// Package domain contains the core value types of the spellchecker: misspelled
// ranges and corrections, along with the validation rules that hold for them
// independent of any engine or dispatch mechanism.
package domain
