package reconciler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/scrapers/epapi"
	"epvotes-backend/lib/testutil"
	"epvotes-backend/services/directory"
	"epvotes-backend/services/votestats"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var voteDate = time.Date(2019, 10, 24, 0, 0, 0, 0, time.UTC)

type fixture struct {
	reconciler Service
	directory  directory.Service
	qry        *db.Queries
	term       db.Term
	cleanup    func()
}

func setup(t *testing.T) fixture {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/reconciler",
		DbSchema: db.Schema,
	})
	dir := directory.NewService(result.DB)

	term, err := dir.EnsureTerm(context.Background(), 9, time.Date(2019, 7, 2, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	return fixture{
		reconciler: NewService(result.DB),
		directory:  dir,
		qry:        db.New(result.DB),
		term:       term,
		cleanup:    cleanup,
	}
}

func (f fixture) activeMember(t *testing.T, webID int64, first, last string) db.Member {
	t.Helper()
	ctx := context.Background()
	member, err := f.directory.UpsertMember(ctx, directory.UpsertMemberParams{
		WebID:     webID,
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	require.NoError(t, f.directory.MergeTermMemberships(ctx, member.ID, []int64{9}))
	return member
}

func payload109619() epapi.VoteResult {
	return epapi.VoteResult{
		DoceoVoteID: 109619,
		Date:        "2019-10-24",
		Description: "Resolution on the Turkish military operation",
		Type:        "NORMAL",
		DocumentRef: &epapi.DocumentRef{
			Type:   "B",
			Number: 154,
			Year:   2019,
			Title:  "Joint motion for a resolution",
		},
		MemberPositions: []epapi.MemberPosition{
			{FirstName: "Jane", LastName: "Doe", Position: "FOR"},
		},
	}
}

func (f fixture) positions(t *testing.T, voteID int64) map[int64]db.Position {
	t.Helper()
	rows, err := f.qry.ListVoteMemberPositions(context.Background(), voteID)
	require.NoError(t, err)
	out := make(map[int64]db.Position, len(rows))
	for _, row := range rows {
		out[row.MemberID] = row.Position
	}
	return out
}

func TestProcessVoteResultCreatesVote(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	jane := f.activeMember(t, 1, "Jane", "Doe")

	outcome, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	require.Equal(t, int64(109619), outcome.Vote.DoceoVoteID)
	require.Equal(t, "2019-10-24", outcome.Vote.Date)
	require.Equal(t, string(db.VOTE_TYPE_NORMAL), outcome.Vote.Type)
	require.True(t, outcome.Vote.DocumentID.Valid)
	require.Empty(t, outcome.UnmatchedNames)
	require.Empty(t, outcome.AmbiguousNames)

	diff := cmp.Diff(
		map[int64]db.Position{jane.ID: db.POSITION_FOR},
		f.positions(t, outcome.Vote.ID),
	)
	require.Empty(t, diff)

	document, err := f.qry.GetDocumentByNaturalKey(ctx, db.GetDocumentByNaturalKeyParams{
		Type:   "B",
		TermID: f.term.ID,
		Number: 154,
		Year:   2019,
	})
	require.NoError(t, err)
	require.Equal(t, "Joint motion for a resolution", document.Title)
	require.Equal(t, document.ID, outcome.Vote.DocumentID.Int64)
}

func TestProcessVoteResultIsIdempotent(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	jane := f.activeMember(t, 1, "Jane", "Doe")

	first, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)
	second, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	require.Equal(t, first.Vote.ID, second.Vote.ID)

	count, err := f.qry.CountVotes(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	documents, err := f.qry.CountDocuments(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), documents)

	diff := cmp.Diff(
		map[int64]db.Position{jane.ID: db.POSITION_FOR},
		f.positions(t, second.Vote.ID),
	)
	require.Empty(t, diff)
}

func TestProcessVoteResultUpdatesChangedPosition(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	jane := f.activeMember(t, 1, "Jane", "Doe")

	payload := payload109619()
	payload.MemberPositions[0].Position = "AGAINST"
	first, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload)
	require.NoError(t, err)
	require.Equal(t, map[int64]db.Position{jane.ID: db.POSITION_AGAINST}, f.positions(t, first.Vote.ID))

	second, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)
	require.Equal(t, first.Vote.ID, second.Vote.ID)
	require.Equal(t, map[int64]db.Position{jane.ID: db.POSITION_FOR}, f.positions(t, second.Vote.ID))
}

func TestProcessVoteResultRemovesStaleAssociations(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	jane := f.activeMember(t, 1, "Jane", "Doe")
	john := f.activeMember(t, 2, "John", "Smith")

	payload := payload109619()
	payload.MemberPositions = append(payload.MemberPositions,
		epapi.MemberPosition{FirstName: "John", LastName: "Smith", Position: "AGAINST"})
	first, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload)
	require.NoError(t, err)
	require.Len(t, f.positions(t, first.Vote.ID), 2)

	second, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	got := f.positions(t, second.Vote.ID)
	require.Equal(t, map[int64]db.Position{jane.ID: db.POSITION_FOR}, got)
	require.NotContains(t, got, john.ID)
}

func TestProcessVoteResultKeepsExistingDocumentTitle(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	f.activeMember(t, 1, "Jane", "Doe")

	_, err := f.qry.CreateDocument(ctx, db.CreateDocumentParams{
		Type:   "B",
		TermID: f.term.ID,
		Number: 154,
		Year:   2019,
		Title:  "Curated title",
	})
	require.NoError(t, err)

	outcome, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	document, err := f.qry.GetDocumentByNaturalKey(ctx, db.GetDocumentByNaturalKeyParams{
		Type:   "B",
		TermID: f.term.ID,
		Number: 154,
		Year:   2019,
	})
	require.NoError(t, err)
	require.Equal(t, "Curated title", document.Title)
	require.Equal(t, document.ID, outcome.Vote.DocumentID.Int64)

	count, err := f.qry.CountDocuments(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestProcessVoteResultIgnoresInactiveMembers(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	// on the roster but never attached to a term
	_, err := f.directory.UpsertMember(ctx, directory.UpsertMemberParams{
		WebID:     1,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	outcome, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	require.Empty(t, f.positions(t, outcome.Vote.ID))
	require.Equal(t, []string{"Jane Doe"}, outcome.UnmatchedNames)
}

func TestProcessVoteResultAssociatesAllAmbiguousCandidates(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	first := f.activeMember(t, 1, "Jane", "Doe")
	second := f.activeMember(t, 2, "Jane", "Doe")

	outcome, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload109619())
	require.NoError(t, err)

	diff := cmp.Diff(
		map[int64]db.Position{
			first.ID:  db.POSITION_FOR,
			second.ID: db.POSITION_FOR,
		},
		f.positions(t, outcome.Vote.ID),
	)
	require.Empty(t, diff)
	require.Equal(t, []string{"Jane Doe"}, outcome.AmbiguousNames)
}

func TestProcessVoteResultComputesStats(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	f.activeMember(t, 1, "Jane", "Doe")
	f.activeMember(t, 2, "John", "Smith")
	f.activeMember(t, 3, "Ann", "Miller")

	payload := payload109619()
	payload.MemberPositions = append(payload.MemberPositions,
		epapi.MemberPosition{FirstName: "John", LastName: "Smith", Position: "AGAINST"})

	outcome, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload)
	require.NoError(t, err)
	require.Equal(t, int64(2), outcome.Stats.Voted)

	stored, err := f.qry.GetVote(ctx, outcome.Vote.ID)
	require.NoError(t, err)
	require.True(t, stored.Stats.Valid)

	stats, err := votestats.Parse(stored.Stats.String)
	require.NoError(t, err)
	diff := cmp.Diff(votestats.Stats{
		Voted: 2,
		ByPosition: map[db.Position]int64{
			db.POSITION_FOR:        1,
			db.POSITION_AGAINST:    1,
			db.POSITION_ABSTENTION: 0,
			db.POSITION_NOVOTE:     1,
		},
	}, stats)
	require.Empty(t, diff)
}

func TestProcessVoteResultRejectsMalformedPayload(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	f.activeMember(t, 1, "Jane", "Doe")

	for name, mutate := range map[string]func(*epapi.VoteResult){
		"missing doceo id": func(p *epapi.VoteResult) { p.DoceoVoteID = 0 },
		"missing date":     func(p *epapi.VoteResult) { p.Date = "" },
		"malformed date":   func(p *epapi.VoteResult) { p.Date = "24/10/2019" },
		"unknown type":     func(p *epapi.VoteResult) { p.Type = "SOMETHING" },
		"unknown position": func(p *epapi.VoteResult) { p.MemberPositions[0].Position = "MAYBE" },
	} {
		t.Run(name, func(t *testing.T) {
			payload := payload109619()
			mutate(&payload)

			_, err := f.reconciler.ProcessVoteResult(ctx, f.term, payload)
			var formatErr *ScrapeFormatError
			require.ErrorAs(t, err, &formatErr)

			count, err := f.qry.CountVotes(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(0), count)
		})
	}
}

type stubVoteResults struct {
	payloads []epapi.VoteResult
}

func (s stubVoteResults) VoteResults(ctx context.Context, term int64, date time.Time) ([]epapi.VoteResult, error) {
	return s.payloads, nil
}

func TestProcessDateSkipsMalformedPayloads(t *testing.T) {
	f := setup(t)
	defer f.cleanup()
	ctx := context.Background()

	f.activeMember(t, 1, "Jane", "Doe")

	broken := payload109619()
	broken.DoceoVoteID = 0
	other := payload109619()
	other.DoceoVoteID = 109620
	other.Description = "Amendment 1"
	other.DocumentRef = nil

	summary, err := f.reconciler.ProcessDate(ctx, f.term, voteDate, stubVoteResults{
		payloads: []epapi.VoteResult{payload109619(), broken, other},
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.Skipped)

	count, err := f.qry.CountVotes(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	vote, err := f.qry.GetVoteByDoceoID(ctx, db.GetVoteByDoceoIDParams{
		TermID:      f.term.ID,
		DoceoVoteID: 109620,
	})
	require.NoError(t, err)
	require.False(t, vote.DocumentID.Valid)
	require.Equal(t, sql.NullInt64{}, vote.DocumentID)
}
