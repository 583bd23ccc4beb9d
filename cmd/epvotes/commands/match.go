package commands

import (
	"fmt"
	"os"

	"epvotes-backend/lib/util/serviceutil"
	"epvotes-backend/services/matcher"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Links stored voting lists to their votes.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		report, err := matcher.NewService(database).MatchVotesAndVotingLists(ctx)
		if err != nil {
			serviceutil.Fatal("failed to match voting lists", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Voting list", "Vote", "Method", "Similarity"})
		for _, pair := range report.Matched {
			method := "doceo id"
			if !pair.Exact {
				method = "description"
			}
			t.AppendRow(table.Row{
				pair.VotingListID, pair.VoteID, method,
				fmt.Sprintf("%.3f", pair.Similarity),
			})
		}
		for _, list := range report.Unmatched {
			t.AppendRow(table.Row{list.ID, "-", "unmatched", "-"})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
