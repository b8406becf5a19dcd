package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"svw.info/tiles/internal/domain"
)

func (c *cli) puzzleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "puzzle [date]",
		Short: "Print the puzzle for a date (default today) as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date *domain.Date
			if len(args) == 1 {
				d, err := domain.ParseDate(args[0])
				if err != nil {
					return err
				}
				date = &d
			}
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			svc, cc, err := c.service(st, nil)
			if err != nil {
				return err
			}
			defer cc.Close()

			var rec *domain.PuzzleRecord
			if date != nil {
				rec, err = svc.Puzzle(cmd.Context(), *date)
			} else {
				rec, err = svc.TodayPuzzle(cmd.Context())
			}
			if err != nil {
				return err
			}
			return c.printJSON(rec)
		},
	}
}

func (c *cli) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the game rules with the earliest and current dates as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			svc, cc, err := c.service(st, nil)
			if err != nil {
				return err
			}
			defer cc.Close()

			view, err := svc.GameRules(cmd.Context())
			if err != nil {
				return err
			}
			return c.printJSON(view)
		},
	}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
