package reconciler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/scrapers/epapi"
	"epvotes-backend/services/docregistry"
	"epvotes-backend/services/resolver"
	"epvotes-backend/services/votestats"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/reconciler")

// ScrapeFormatError marks a vote-result payload the reconciler refuses to
// process. Nothing is written for such a payload; the rest of the batch
// is unaffected.
type ScrapeFormatError struct {
	Payload epapi.VoteResult
	Reason  string
}

func (e *ScrapeFormatError) Error() string {
	return fmt.Sprintf("malformed vote result payload: %s", e.Reason)
}

// Outcome reports what one reconciliation run did, including the name
// entries that need operator attention.
type Outcome struct {
	Vote           db.Vote
	Stats          votestats.Stats
	UnmatchedNames []string
	AmbiguousNames []string
}

// Service reconciles scraped vote-result payloads into the store: it
// upserts the vote, attaches its document, replaces the member-position
// association set and recomputes the cached stats, all in one
// transaction per payload.
type Service struct {
	makeTx db.MakeTx
}

func NewService(database *sql.DB) Service {
	return Service{
		makeTx: db.NewMakeTx(database),
	}
}

// ProcessVoteResult runs one full reconciliation for a payload. Re-running
// it with identical content is a no-op beyond refreshing mutable fields.
func (s Service) ProcessVoteResult(ctx context.Context, term db.Term, payload epapi.VoteResult) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "ProcessVoteResult")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("term", term.Number),
		attribute.Int64("doceo_vote_id", payload.DoceoVoteID),
	)

	if payload.DoceoVoteID == 0 {
		err := &ScrapeFormatError{Payload: payload, Reason: "missing doceo vote id"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	date, err := payload.ParseDate()
	if err != nil {
		ferr := &ScrapeFormatError{Payload: payload, Reason: err.Error()}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, ferr.Error())
		return Outcome{}, ferr
	}
	voteType, err := db.ParseVoteType(payload.Type)
	if err != nil {
		ferr := &ScrapeFormatError{Payload: payload, Reason: err.Error()}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, ferr.Error())
		return Outcome{}, ferr
	}

	txqry, discard, commit, err := s.makeTx()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	defer discard()

	vote, err := s.upsertVote(ctx, txqry, term, payload, date, voteType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	document, hasDocument, err := docregistry.New(txqry).Resolve(ctx, payload.DocumentRef, term.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	documentID := sql.NullInt64{}
	if hasDocument {
		documentID = sql.NullInt64{Int64: document.ID, Valid: true}
	}
	err = txqry.SetVoteDocument(ctx, db.SetVoteDocumentParams{
		ID:         vote.ID,
		DocumentID: documentID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	vote.DocumentID = documentID

	existing, err := txqry.ListVoteMemberPositions(ctx, vote.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	priorPositions := make(map[int64]db.Position, len(existing))
	for _, row := range existing {
		priorPositions[row.MemberID] = row.Position
	}

	staged, unmatched, ambiguous, err := s.stagePositions(ctx, txqry, payload, date, priorPositions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	err = replaceAssociations(ctx, txqry, vote.ID, priorPositions, staged)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	activeCount, err := txqry.CountActiveMembersAt(ctx, date.Format(time.DateOnly))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	positions := make([]db.Position, 0, len(staged))
	for _, position := range staged {
		positions = append(positions, position)
	}
	stats := votestats.Compute(positions, activeCount)
	encoded, err := stats.Encode()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	err = txqry.SetVoteStats(ctx, db.SetVoteStatsParams{ID: vote.ID, Stats: encoded})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	vote.Stats = sql.NullString{String: encoded, Valid: true}

	err = commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	return Outcome{
		Vote:           vote,
		Stats:          stats,
		UnmatchedNames: unmatched,
		AmbiguousNames: ambiguous,
	}, nil
}

func (s Service) upsertVote(
	ctx context.Context,
	qry *db.Queries,
	term db.Term,
	payload epapi.VoteResult,
	date time.Time,
	voteType db.VoteType,
) (db.Vote, error) {
	subvote := sql.NullString{}
	if payload.SubvoteDescription != "" {
		subvote = sql.NullString{String: payload.SubvoteDescription, Valid: true}
	}

	existing, err := qry.GetVoteByDoceoID(ctx, db.GetVoteByDoceoIDParams{
		TermID:      term.ID,
		DoceoVoteID: payload.DoceoVoteID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return qry.CreateVote(ctx, db.CreateVoteParams{
			DoceoVoteID:        payload.DoceoVoteID,
			TermID:             term.ID,
			Date:               date.Format(time.DateOnly),
			Description:        payload.Description,
			SubvoteDescription: subvote,
			Type:               string(voteType),
		})
	}
	if err != nil {
		return db.Vote{}, err
	}

	return qry.UpdateVote(ctx, db.UpdateVoteParams{
		ID:                 existing.ID,
		Date:               date.Format(time.DateOnly),
		Description:        payload.Description,
		SubvoteDescription: subvote,
		Type:               string(voteType),
	})
}

// stagePositions resolves every scraped (name, position) entry to member
// ids. Names that resolve to nobody are skipped and reported; names that
// stay ambiguous after the prior-position tie-break are associated in
// full and reported.
func (s Service) stagePositions(
	ctx context.Context,
	qry *db.Queries,
	payload epapi.VoteResult,
	date time.Time,
	priorPositions map[int64]db.Position,
) (staged map[int64]db.Position, unmatched, ambiguous []string, err error) {
	memberResolver := resolver.New(qry)
	staged = make(map[int64]db.Position)

	for _, entry := range payload.MemberPositions {
		position, err := db.ParsePosition(entry.Position)
		if err != nil {
			return nil, nil, nil, &ScrapeFormatError{Payload: payload, Reason: err.Error()}
		}

		members, err := memberResolver.Resolve(ctx, entry.FirstName, entry.LastName, date)
		if err != nil {
			return nil, nil, nil, err
		}

		displayName := fmt.Sprintf("%s %s", entry.FirstName, entry.LastName)
		if len(members) == 0 {
			slog.WarnContext(
				ctx, "no member matches scraped name",
				"first_name", entry.FirstName,
				"last_name", entry.LastName,
				"date", date.Format(time.DateOnly),
				"doceo_vote_id", payload.DoceoVoteID,
			)
			unmatched = append(unmatched, displayName)
			continue
		}

		if len(members) > 1 {
			// a previously recorded position that disagrees with the
			// scraped one rules a candidate out
			var agreeing []db.Member
			for _, member := range members {
				prior, ok := priorPositions[member.ID]
				if !ok || prior == position {
					agreeing = append(agreeing, member)
				}
			}
			if len(agreeing) > 0 {
				members = agreeing
			}
			if len(members) > 1 {
				slog.WarnContext(
					ctx, "scraped name is ambiguous, associating all candidates",
					"first_name", entry.FirstName,
					"last_name", entry.LastName,
					"candidates", len(members),
					"doceo_vote_id", payload.DoceoVoteID,
				)
				ambiguous = append(ambiguous, displayName)
			}
		}

		for _, member := range members {
			staged[member.ID] = position
		}
	}

	return staged, unmatched, ambiguous, nil
}

// replaceAssociations makes the stored association set equal to the
// staged one: changed positions are updated in place, members absent
// from the staged set are removed, new ones are inserted.
func replaceAssociations(
	ctx context.Context,
	qry *db.Queries,
	voteID int64,
	existing map[int64]db.Position,
	staged map[int64]db.Position,
) error {
	for memberID, position := range existing {
		stagedPosition, keep := staged[memberID]
		if !keep {
			err := qry.DeleteVoteMemberPosition(ctx, db.DeleteVoteMemberPositionParams{
				VoteID:   voteID,
				MemberID: memberID,
			})
			if err != nil {
				return err
			}
			continue
		}
		if stagedPosition != position {
			err := qry.UpdateVoteMemberPosition(ctx, db.UpdateVoteMemberPositionParams{
				VoteID:   voteID,
				MemberID: memberID,
				Position: stagedPosition,
			})
			if err != nil {
				return err
			}
		}
	}

	for memberID, position := range staged {
		if _, exists := existing[memberID]; exists {
			continue
		}
		err := qry.CreateVoteMemberPosition(ctx, db.CreateVoteMemberPositionParams{
			VoteID:   voteID,
			MemberID: memberID,
			Position: position,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// DateSummary reports one vote-results batch for a sitting date.
type DateSummary struct {
	Processed int
	Skipped   int
	Outcomes  []Outcome
}

// VoteResultSource is the scraping collaborator the batch runner pulls
// payloads from.
type VoteResultSource interface {
	VoteResults(ctx context.Context, term int64, date time.Time) ([]epapi.VoteResult, error)
}

// ProcessDate fetches and reconciles every vote result for a sitting
// date. A malformed payload is logged and skipped without aborting the
// rest of the batch.
func (s Service) ProcessDate(ctx context.Context, term db.Term, date time.Time, source VoteResultSource) (DateSummary, error) {
	ctx, span := tracer.Start(ctx, "ProcessDate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("term", term.Number),
		attribute.String("date", date.Format(time.DateOnly)),
	)

	payloads, err := source.VoteResults(ctx, term.Number, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DateSummary{}, err
	}

	var summary DateSummary
	for _, payload := range payloads {
		outcome, err := s.ProcessVoteResult(ctx, term, payload)
		var formatErr *ScrapeFormatError
		if errors.As(err, &formatErr) {
			slog.ErrorContext(
				ctx, "skipping malformed vote result",
				"reason", formatErr.Reason,
				"payload", fmt.Sprintf("%+v", formatErr.Payload),
			)
			summary.Skipped++
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return summary, err
		}
		summary.Processed++
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	span.SetAttributes(
		attribute.Int("processed", summary.Processed),
		attribute.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
