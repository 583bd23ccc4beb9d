package commands

import (
	"errors"
	"log/slog"
	"os"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/restyutil"
	"epvotes-backend/lib/scrapers/europarl"
	"epvotes-backend/lib/textutil"
	"epvotes-backend/lib/util/serviceutil"
	"epvotes-backend/services/directory"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeTerm *int64
var scrapeDumpTraffic *bool

func init() {
	scrapeTerm = scrapeCmd.PersistentFlags().Int64("term", 9, "The parliamentary term to scrape.")
	scrapeDumpTraffic = scrapeCmd.PersistentFlags().Bool("dump-traffic", false, "Dump raw http traffic to .dev/resty for debugging.")

	scrapeCmd.AddCommand(scrapeMembersCmd)
	scrapeCmd.AddCommand(scrapeMemberInfoCmd)
	scrapeCmd.AddCommand(scrapeMemberGroupsCmd)
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes parliament data into the database.",
}

func createEuroparlClient() *europarl.Client {
	if *scrapeDumpTraffic {
		europarl.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/europarl"))
	}
	client, err := europarl.NewClient(europarl.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize europarl client", err)
	}
	return client
}

var scrapeMembersCmd = &cobra.Command{
	Use:   "members [--term <n>]",
	Short: "Scrapes the member roster for a term from the directory feed.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		dir := directory.NewService(database)
		term := ensureTerm(ctx, dir, *scrapeTerm)
		client := createEuroparlClient()

		entries, err := client.Members(ctx, term.Number)
		if err != nil {
			serviceutil.Fatal("failed to scrape member directory", err)
		}

		upserted := 0
		for _, entry := range entries {
			first, last := textutil.ParseFullName(entry.FullName)
			countryCode, _ := europarl.CountryCode(entry.Country)

			member, err := dir.UpsertMember(ctx, directory.UpsertMemberParams{
				WebID:       entry.WebID,
				FirstName:   first,
				LastName:    last,
				CountryCode: countryCode,
			})
			if err != nil {
				serviceutil.Fatal("failed to upsert member", err)
			}
			err = dir.MergeTermMemberships(ctx, member.ID, []int64{term.Number})
			if err != nil {
				serviceutil.Fatal("failed to merge term memberships", err)
			}
			upserted++
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Term", "Members"})
		t.AppendRow(table.Row{term.Number, upserted})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var scrapeMemberInfoCmd = &cobra.Command{
	Use:   "member-info [--term <n>]",
	Short: "Scrapes profile details for every known member.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		qry := db.New(database)
		dir := directory.NewService(database)
		term := ensureTerm(ctx, dir, *scrapeTerm)
		client := createEuroparlClient()

		members, err := qry.ListMembers(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list members", err)
		}

		updated := 0
		failed := 0
		for _, member := range members {
			info, err := client.MemberInfo(ctx, member.WebID, term.Number)
			if err != nil {
				slog.WarnContext(ctx, "failed to scrape member info",
					"web_id", member.WebID, "err", err)
				failed++
				continue
			}

			countryCode, _ := europarl.CountryCode(info.Country)
			_, err = dir.UpsertMember(ctx, directory.UpsertMemberParams{
				WebID:       member.WebID,
				FirstName:   info.FirstName,
				LastName:    info.LastName,
				DateOfBirth: info.DateOfBirth,
				CountryCode: countryCode,
			})
			if err != nil {
				serviceutil.Fatal("failed to upsert member", err)
			}
			updated++
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Term", "Updated", "Failed"})
		t.AppendRow(table.Row{term.Number, updated, failed})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var scrapeMemberGroupsCmd = &cobra.Command{
	Use:   "member-groups [--term <n>]",
	Short: "Scrapes political group memberships for every known member.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := openDatabase()
		defer database.Close()

		qry := db.New(database)
		dir := directory.NewService(database)
		term := ensureTerm(ctx, dir, *scrapeTerm)
		client := createEuroparlClient()

		members, err := qry.ListMembers(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list members", err)
		}

		recorded := 0
		skipped := 0
		for _, member := range members {
			activities, err := client.MemberGroups(ctx, member.WebID, term.Number)
			if err != nil {
				slog.WarnContext(ctx, "failed to scrape member groups",
					"web_id", member.WebID, "err", err)
				skipped++
				continue
			}

			for _, activity := range activities {
				_, err := dir.SetGroupMembership(ctx, directory.SetGroupMembershipParams{
					MemberID:  member.ID,
					GroupCode: activity.GroupCode,
					GroupName: activity.GroupName,
					Start:     activity.Start,
					End:       activity.End,
				})
				// already recorded by an earlier run
				if errors.Is(err, directory.ErrOverlappingGroupMembership) {
					continue
				}
				if err != nil {
					serviceutil.Fatal("failed to record group membership", err)
				}
				recorded++
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Term", "Memberships", "Skipped members"})
		t.AppendRow(table.Row{term.Number, recorded, skipped})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
