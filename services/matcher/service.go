package matcher

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/scrapers/epapi"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/matcher")

// DescriptionSimilarityThreshold is the minimum JaroWinkler similarity
// between a voting list description and a vote description for a fuzzy
// match to be accepted.
const DescriptionSimilarityThreshold = 0.9

// Service ingests tabulated voting lists and links them to votes, by
// shared doceo id where the list carries one and by description
// similarity otherwise.
type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// IngestVotingLists stores scraped voting lists for later matching.
func (s Service) IngestVotingLists(ctx context.Context, term db.Term, lists []epapi.VotingListResult) (int, error) {
	ctx, span := tracer.Start(ctx, "IngestVotingLists")
	defer span.End()
	span.SetAttributes(attribute.Int64("term", term.Number))

	stored := 0
	for _, list := range lists {
		doceoVoteID := sql.NullInt64{}
		if list.DoceoVoteID != nil {
			doceoVoteID = sql.NullInt64{Int64: *list.DoceoVoteID, Valid: true}
		}
		stats := sql.NullString{}
		if len(list.Stats) > 0 {
			raw, err := json.Marshal(list.Stats)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return stored, err
			}
			stats = sql.NullString{String: string(raw), Valid: true}
		}

		_, err := s.qry.CreateVotingList(ctx, db.CreateVotingListParams{
			TermID:      term.ID,
			Date:        list.Date,
			Description: list.Description,
			DoceoVoteID: doceoVoteID,
			Stats:       stats,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return stored, err
		}
		stored++
	}

	span.SetAttributes(attribute.Int("stored", stored))
	return stored, nil
}

// MatchedPair records one established voting list to vote link.
type MatchedPair struct {
	VotingListID int64
	VoteID       int64
	Exact        bool
	Similarity   float64
}

// Report summarizes one matching run.
type Report struct {
	Matched   []MatchedPair
	Unmatched []db.VotingList
}

// MatchVotesAndVotingLists links every unmatched voting list to a vote.
// Lists carrying a doceo id link exactly; the rest link to the most
// similar vote description on the same sitting date, when that
// similarity clears the threshold.
func (s Service) MatchVotesAndVotingLists(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "MatchVotesAndVotingLists")
	defer span.End()

	unmatched, err := s.qry.ListUnmatchedVotingLists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	var report Report
	for _, list := range unmatched {
		vote, similarity, exact, found, err := s.findVote(ctx, list)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		if !found {
			slog.WarnContext(
				ctx, "no vote matches voting list",
				"voting_list_id", list.ID,
				"date", list.Date,
				"description", list.Description,
			)
			report.Unmatched = append(report.Unmatched, list)
			continue
		}

		err = s.qry.SetVotingListVote(ctx, db.SetVotingListVoteParams{
			ID:     list.ID,
			VoteID: sql.NullInt64{Int64: vote.ID, Valid: true},
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		report.Matched = append(report.Matched, MatchedPair{
			VotingListID: list.ID,
			VoteID:       vote.ID,
			Exact:        exact,
			Similarity:   similarity,
		})
	}

	span.SetAttributes(
		attribute.Int("matched", len(report.Matched)),
		attribute.Int("unmatched", len(report.Unmatched)),
	)
	return report, nil
}

func (s Service) findVote(ctx context.Context, list db.VotingList) (vote db.Vote, similarity float64, exact, found bool, err error) {
	if list.DoceoVoteID.Valid {
		vote, err := s.qry.GetVoteByDoceoID(ctx, db.GetVoteByDoceoIDParams{
			TermID:      list.TermID,
			DoceoVoteID: list.DoceoVoteID.Int64,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return db.Vote{}, 0, false, false, nil
		}
		if err != nil {
			return db.Vote{}, 0, false, false, err
		}
		if vote.Date != list.Date {
			return db.Vote{}, 0, false, false, nil
		}
		return vote, 1, true, true, nil
	}

	candidates, err := s.qry.ListVotesByDate(ctx, db.ListVotesByDateParams{
		TermID: list.TermID,
		Date:   list.Date,
	})
	if err != nil {
		return db.Vote{}, 0, false, false, err
	}

	var mostSimilarity float64
	var mostSimilar db.Vote
	for _, candidate := range candidates {
		sim := matchr.JaroWinkler(list.Description, candidate.Description, false)
		if sim > mostSimilarity {
			mostSimilarity = sim
			mostSimilar = candidate
		}
	}
	if mostSimilarity < DescriptionSimilarityThreshold {
		return db.Vote{}, 0, false, false, nil
	}
	return mostSimilar, mostSimilarity, false, true, nil
}
