package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sppd-tools/sppdparquet/internal/downloader"
	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/util"
)

var periodsType string

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the periods currently published for a feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()

		types := feed.All()
		if periodsType != "" {
			t, err := feed.ParseProcurementType(periodsType)
			if err != nil {
				return err
			}
			types = []feed.ProcurementType{t}
		}

		client := util.DefaultHTTPClient()
		for _, t := range types {
			available, err := downloader.DiscoverPeriodZips(cmd.Context(), client, logger, t)
			if err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
			periods := make([]string, 0, len(available))
			for p := range available {
				periods = append(periods, p)
			}
			sort.Strings(periods)

			fmt.Printf("%s (%d periods):\n", t, len(periods))
			for _, p := range periods {
				fmt.Printf("  %s  %s\n", p, available[p])
			}
		}
		return nil
	},
}

func init() {
	periodsCmd.Flags().StringVarP(&periodsType, "type", "t", "", "feed to list: mc/minor-contracts or pt/public-tenders (default both)")
}
