package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/mgomes/colloc/internal/collocation"
	"github.com/mgomes/colloc/internal/lookup"
	"github.com/mgomes/colloc/internal/related"
)

func newLookupCmd(state *appState) *cli.Command {
	var jsonOutput bool

	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look up the collocations of a word",
		UsageText: "colloc lookup <word> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			word := strings.Join(c.Args().Slice(), " ")

			res, err := state.service.Lookup(ctx, word)
			switch {
			case errors.Is(err, lookup.ErrEmptyWord):
				return errors.New("Please enter a word")
			case err != nil:
				return errors.New(collocation.UserMessage(err))
			}

			if jsonOutput {
				return writeJSON(res.Collocations)
			}

			if res.Empty() {
				fmt.Fprintf(os.Stderr, "No collocations found for %q\n", res.Word)
				return nil
			}
			printCollocations(res.Collocations)
			return nil
		},
	}
}

func printCollocations(items []collocation.Collocation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range items {
		fmt.Fprintf(w, "%s\t%.1f\n", c.Collocate, c.Frequency)
		for _, s := range c.ExampleSentences {
			fmt.Fprintf(w, "  %s\t\n", s)
		}
	}
	_ = w.Flush()
}

func writeJSON(v any) error {
	if v == nil {
		v = []any{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHistoryCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the recent searches",
		UsageText: "colloc history [clear]",
		Action: func(ctx context.Context, c *cli.Command) error {
			for _, w := range state.service.History() {
				fmt.Println(w)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Forget all recent searches",
				Action: func(ctx context.Context, c *cli.Command) error {
					state.service.ClearHistory(ctx)
					fmt.Fprintln(os.Stderr, "History cleared")
					return nil
				},
			},
		},
	}
}

func newRelatedCmd(state *appState) *cli.Command {
	var limit int

	return &cli.Command{
		Name:      "related",
		Usage:     "List previously looked-up words close in meaning",
		UsageText: "colloc related <word> [-n 5]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of words",
				Value:       related.DefaultLimit,
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			word := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if word == "" {
				return errors.New("Please enter a word")
			}

			words, err := state.service.Related(ctx, word, limit)
			if err != nil {
				return fmt.Errorf("related words: %w", err)
			}
			if len(words) == 0 {
				fmt.Fprintln(os.Stderr, "No related words yet")
				return nil
			}
			for _, w := range words {
				fmt.Println(w)
			}
			return nil
		},
	}
}
