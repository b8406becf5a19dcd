package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svw.info/tiles/internal/batch"
	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/words"
)

func (c *cli) generateCmd() *cobra.Command {
	var (
		days       int
		start, end string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store puzzles for a range of dates",
		Long: `Generate puzzles for every date in the range that has none yet.

With neither --start nor --end the range begins today. --start and --end
together ignore --days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sp, ep *domain.Date
			if start != "" {
				d, err := domain.ParseDate(start)
				if err != nil {
					return fmt.Errorf("%w: --start: %v", domain.ErrRange, err)
				}
				sp = &d
			}
			if end != "" {
				d, err := domain.ParseDate(end)
				if err != nil {
					return fmt.Errorf("%w: --end: %v", domain.ErrRange, err)
				}
				ep = &d
			}

			wl, err := words.Load(c.settings.WordsPath())
			if err != nil {
				return err
			}
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			svc, cc, err := c.service(st, wl)
			if err != nil {
				return err
			}
			defer cc.Close()

			from, to, err := batch.ResolveRange(days, sp, ep, svc.Today())
			if err != nil {
				return err
			}
			sum, err := svc.GenerateRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "generated %d, skipped %d (%s..%s)\n", len(sum.Generated), len(sum.Skipped), from, to)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 1, "number of days to generate")
	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (YYYY-MM-DD)")
	return cmd
}
