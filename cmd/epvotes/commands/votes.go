package commands

import (
	"os"
	"time"

	"epvotes-backend/lib/configutil"
	"epvotes-backend/lib/scrapers/epapi"
	"epvotes-backend/lib/util/serviceutil"
	"epvotes-backend/services/directory"
	"epvotes-backend/services/matcher"
	"epvotes-backend/services/reconciler"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	ApiBaseUrl string `json:"api_base_url"`
}

var scrapeDate *string

func init() {
	scrapeDate = scrapeCmd.PersistentFlags().String("date", "", "The sitting date to scrape, formatted yyyy-mm-dd.")

	scrapeCmd.AddCommand(scrapeVoteResultsCmd)
	scrapeCmd.AddCommand(scrapeVotingListsCmd)
}

func createApiClient() *epapi.Client {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return epapi.NewClient(epapi.ClientOptions{BaseUrl: cfg.ApiBaseUrl})
}

func sittingDate() time.Time {
	date, err := time.Parse(time.DateOnly, *scrapeDate)
	if err != nil {
		serviceutil.Fatal("failed to parse --date", err)
	}
	return date
}

var scrapeVoteResultsCmd = &cobra.Command{
	Use:   "vote-results --date <yyyy-mm-dd> [--term <n>]",
	Short: "Scrapes and reconciles the vote results of a sitting date.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		dir := directory.NewService(database)
		term := ensureTerm(ctx, dir, *scrapeTerm)
		date := sittingDate()
		client := createApiClient()

		summary, err := reconciler.NewService(database).ProcessDate(ctx, term, date, client)
		if err != nil {
			serviceutil.Fatal("failed to process vote results", err)
		}

		unmatched := 0
		ambiguous := 0
		for _, outcome := range summary.Outcomes {
			unmatched += len(outcome.UnmatchedNames)
			ambiguous += len(outcome.AmbiguousNames)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Votes", "Skipped", "Unmatched names", "Ambiguous names"})
		t.AppendRow(table.Row{date.Format(time.DateOnly), summary.Processed, summary.Skipped, unmatched, ambiguous})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var scrapeVotingListsCmd = &cobra.Command{
	Use:   "voting-lists --date <yyyy-mm-dd> [--term <n>]",
	Short: "Scrapes the tabulated voting lists of a sitting date.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		dir := directory.NewService(database)
		term := ensureTerm(ctx, dir, *scrapeTerm)
		date := sittingDate()
		client := createApiClient()

		lists, err := client.VotingLists(ctx, term.Number, date)
		if err != nil {
			serviceutil.Fatal("failed to scrape voting lists", err)
		}

		stored, err := matcher.NewService(database).IngestVotingLists(ctx, term, lists)
		if err != nil {
			serviceutil.Fatal("failed to store voting lists", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Voting lists"})
		t.AppendRow(table.Row{date.Format(time.DateOnly), stored})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
