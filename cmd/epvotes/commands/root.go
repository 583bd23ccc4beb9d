package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/sqliteutil"
	"epvotes-backend/lib/util/serviceutil"
	"epvotes-backend/services/directory"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "epvotes",
	Short: "epvotes scrapes and reconciles European Parliament voting data.",
}

var databasePath *string

func init() {
	databasePath = rootCmd.PersistentFlags().String("db", "epvotes.db", "The database to read and write.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() *sql.DB {
	database, err := sqliteutil.OpenDB(*databasePath, db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return database
}

// ensureTerm resolves the --term flag against the parliamentary calendar
// and makes sure the term row exists.
func ensureTerm(ctx context.Context, dir directory.Service, number int64) db.Term {
	start, end, ok := directory.KnownTermDates(number)
	if !ok {
		serviceutil.Fatal("unknown parliamentary term", fmt.Errorf("term %d", number))
	}
	term, err := dir.EnsureTerm(ctx, number, start, end)
	if err != nil {
		serviceutil.Fatal("failed to ensure term", err)
	}
	return term
}
