package main

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/textbuf"
	"github.com/urfave/cli/v2"
)

// finding is one misspelled word in an input
type finding struct {
	source int
	name   string
	line   int
	// column counts UTF-16 code units from 1
	column int
	word   string
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "report misspelled words in files, or stdin when no file is given",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "suggest",
				Aliases: []string{"s"},
				Usage:   "print corrections next to each misspelling",
			},
			&cli.StringSliceFlag{
				Name:    "add",
				Aliases: []string{"a"},
				Usage:   "accept this word for the session; may be repeated",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) (err error) {
	app, err := newApplication(c)
	if err != nil {
		return err
	}
	defer func() {
		if serr := app.shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	if err := app.loadDictionary(); err != nil {
		return err
	}
	for _, word := range c.StringSlice("add") {
		if err := app.checker.Add(word); err != nil {
			return fmt.Errorf("failed to add %q: %w", word, err)
		}
	}

	sources := c.Args().Slice()
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	var (
		findings []finding
		failure  error
		pending  int
	)
	for index, name := range sources {
		lines, err := readLines(c.App.Reader, name)
		if err != nil {
			return err
		}
		for i, line := range lines {
			lineNo := i + 1
			pending++
			err := app.submit(c.Context, func() error {
				return app.checker.CheckSpelling(line, func(ranges []domain.MisspelledRange, err error) {
					pending--
					if err != nil {
						if failure == nil {
							failure = fmt.Errorf("%s:%d: %w", name, lineNo, err)
						}
						return
					}
					for _, r := range ranges {
						start, end, ok := textbuf.ByteRange(line, r)
						if !ok {
							if failure == nil {
								failure = fmt.Errorf("%s:%d: %w: %v", name, lineNo, domain.ErrRangeOutOfBounds, r)
							}
							return
						}
						findings = append(findings, finding{
							source: index,
							name:   name,
							line:   lineNo,
							column: r.Start + 1,
							word:   line[start:end],
						})
					}
				})
			})
			if err != nil {
				return err
			}
		}
	}
	if err := app.wait(c.Context, func() bool { return pending == 0 }); err != nil {
		return err
	}
	if failure != nil {
		return failure
	}

	var suggestions map[string][]string
	if c.Bool("suggest") {
		suggestions, err = app.suggestAll(c, uniqueWords(findings))
		if err != nil {
			return err
		}
	}

	slices.SortFunc(findings, func(a, b finding) int {
		return cmp.Or(
			cmp.Compare(a.source, b.source),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.column, b.column),
		)
	})
	for _, f := range findings {
		fmt.Fprintf(c.App.Writer, "%s:%d:%d: %s", f.name, f.line, f.column, f.word)
		if s := suggestions[f.word]; len(s) > 0 {
			fmt.Fprintf(c.App.Writer, " (%s)", strings.Join(s, ", "))
		}
		fmt.Fprintln(c.App.Writer)
	}

	if len(findings) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "print corrections for each word",
		ArgsUsage: "WORD...",
		Action:    suggestAction,
	}
}

func suggestAction(c *cli.Context) (err error) {
	if c.NArg() == 0 {
		return cli.Exit("suggest needs at least one word", 2)
	}

	app, err := newApplication(c)
	if err != nil {
		return err
	}
	defer func() {
		if serr := app.shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	if err := app.loadDictionary(); err != nil {
		return err
	}

	words := c.Args().Slice()
	var misspelled []string
	for _, word := range words {
		wrong, err := app.checker.IsMisspelled(word)
		if err != nil {
			return fmt.Errorf("failed to check %q: %w", word, err)
		}
		if wrong {
			misspelled = append(misspelled, word)
		}
	}

	suggestions, err := app.suggestAll(c, misspelled)
	if err != nil {
		return err
	}

	for _, word := range words {
		s, wrong := suggestions[word]
		switch {
		case !wrong:
			fmt.Fprintf(c.App.Writer, "%s: ok\n", word)
		case len(s) == 0:
			fmt.Fprintf(c.App.Writer, "%s: no suggestions\n", word)
		default:
			fmt.Fprintf(c.App.Writer, "%s: %s\n", word, strings.Join(s, ", "))
		}
	}
	return nil
}

// suggestAll looks up corrections for every word and waits for all of them.
// Every word appears in the result, with an empty list when nothing matched.
func (app *application) suggestAll(c *cli.Context, words []string) (map[string][]string, error) {
	result := make(map[string][]string, len(words))
	var failure error
	pending := 0
	for _, word := range words {
		if _, seen := result[word]; seen {
			continue
		}
		result[word] = nil
		pending++
		err := app.submit(c.Context, func() error {
			return app.checker.GetCorrectionsForMisspelling(word, func(corrections []string, err error) {
				pending--
				if err != nil {
					if failure == nil {
						failure = fmt.Errorf("corrections for %q: %w", word, err)
					}
					return
				}
				result[word] = corrections
			})
		})
		if err != nil {
			return nil, err
		}
	}
	if err := app.wait(c.Context, func() bool { return pending == 0 }); err != nil {
		return nil, err
	}
	return result, failure
}

func dictionariesCommand() *cli.Command {
	return &cli.Command{
		Name:      "dictionaries",
		Aliases:   []string{"dicts"},
		Usage:     "list the dictionaries found in a directory",
		ArgsUsage: "[DIR]",
		Action:    dictionariesAction,
	}
}

func dictionariesAction(c *cli.Context) (err error) {
	app, err := newApplication(c)
	if err != nil {
		return err
	}
	defer func() {
		if serr := app.shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	path := c.Args().First()
	names, err := app.checker.GetAvailableDictionaries(path)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		if path == "" {
			path = app.config.Dictionary.SearchPath
		}
		fmt.Fprintf(c.App.ErrWriter, "no dictionaries found in %s\n", path)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}

func uniqueWords(findings []finding) []string {
	words := make([]string, 0, len(findings))
	for _, f := range findings {
		words = append(words, f.word)
	}
	slices.Sort(words)
	return slices.Compact(words)
}

// readLines reads name, or in when name is "-"
func readLines(in io.Reader, name string) ([]string, error) {
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return lines, nil
}
