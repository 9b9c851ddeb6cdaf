// Package wordlist implements spelling.Engine over plain word lists.
//
// A dictionary is a text file with one word per line, named after its
// language tag (en_US.dic, en-GB.txt, fr.dic) or any other hunspell-style
// name (de_DE_frami.dic), which is then loaded by that exact name. Hunspell .dic files are
// accepted as well: a leading entry count is skipped and affix flags after a
// slash are ignored, so every listed stem is known but no affix expansion is
// performed. Lines starting with '#' are comments.
//
// Words are compared after Unicode case folding. Corrections are ranked by
// edit distance, then by shared prefix, then by position in the word list,
// which is expected to be ordered by frequency.
package wordlist
