package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/directory")

// ErrOverlappingGroupMembership is returned when a new group membership
// would cover an instant already covered by another membership of the
// same member.
var ErrOverlappingGroupMembership = errors.New("overlapping group membership")

// Service is the member directory: members, their time-bounded term and
// group memberships, and date-scoped lookups.
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

func nullDate(date *time.Time) sql.NullString {
	if date == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: date.Format(time.DateOnly), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// EnsureTerm returns the term with the given number, creating it first if
// it doesn't exist yet.
func (s Service) EnsureTerm(ctx context.Context, number int64, start time.Time, end *time.Time) (db.Term, error) {
	ctx, span := tracer.Start(ctx, "EnsureTerm")
	defer span.End()
	span.SetAttributes(attribute.Int64("term", number))

	term, err := s.qry.GetTermByNumber(ctx, number)
	if err == nil {
		return term, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Term{}, err
	}

	term, err = s.qry.CreateTerm(ctx, db.CreateTermParams{
		Number:    number,
		StartDate: start.Format(time.DateOnly),
		EndDate:   nullDate(end),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Term{}, err
	}
	return term, nil
}

type UpsertMemberParams struct {
	WebID       int64
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	CountryCode string
}

// UpsertMember creates or updates a member keyed on its external web id.
// The normalized name columns are recomputed on every write.
func (s Service) UpsertMember(ctx context.Context, arg UpsertMemberParams) (db.Member, error) {
	ctx, span := tracer.Start(ctx, "UpsertMember")
	defer span.End()
	span.SetAttributes(attribute.Int64("web_id", arg.WebID))

	existing, err := s.qry.GetMemberByWebID(ctx, arg.WebID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Member{}, err
	}

	if errors.Is(err, sql.ErrNoRows) {
		member, err := s.qry.CreateMember(ctx, db.CreateMemberParams{
			WebID:               arg.WebID,
			FirstName:           arg.FirstName,
			LastName:            arg.LastName,
			FirstNameNormalized: textutil.NormalizeName(arg.FirstName),
			LastNameNormalized:  textutil.NormalizeName(arg.LastName),
			DateOfBirth:         nullDate(arg.DateOfBirth),
			CountryCode:         nullString(arg.CountryCode),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return db.Member{}, err
		}
		return member, nil
	}

	// scrapes can omit fields that earlier scrapes filled in
	if arg.FirstName == "" {
		arg.FirstName = existing.FirstName
	}
	if arg.LastName == "" {
		arg.LastName = existing.LastName
	}
	dateOfBirth := nullDate(arg.DateOfBirth)
	if !dateOfBirth.Valid {
		dateOfBirth = existing.DateOfBirth
	}
	countryCode := nullString(arg.CountryCode)
	if !countryCode.Valid {
		countryCode = existing.CountryCode
	}

	member, err := s.qry.UpdateMember(ctx, db.UpdateMemberParams{
		ID:                  existing.ID,
		FirstName:           arg.FirstName,
		LastName:            arg.LastName,
		FirstNameNormalized: textutil.NormalizeName(arg.FirstName),
		LastNameNormalized:  textutil.NormalizeName(arg.LastName),
		DateOfBirth:         dateOfBirth,
		CountryCode:         countryCode,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Member{}, err
	}
	return member, nil
}

// MergeTermMemberships attaches the member to every listed term it isn't
// attached to yet; existing memberships are never removed. Membership
// dates default to the term's dates.
func (s Service) MergeTermMemberships(ctx context.Context, memberID int64, termNumbers []int64) error {
	ctx, span := tracer.Start(ctx, "MergeTermMemberships")
	defer span.End()
	span.SetAttributes(attribute.Int64("member_id", memberID))

	existing, err := s.qry.ListTermMembershipsByMember(ctx, memberID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	attached := make(map[int64]struct{}, len(existing))
	for _, membership := range existing {
		attached[membership.TermID] = struct{}{}
	}

	for _, number := range termNumbers {
		term, err := s.qry.GetTermByNumber(ctx, number)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("term %d: %w", number, err)
		}
		if _, ok := attached[term.ID]; ok {
			continue
		}
		_, err = s.qry.CreateTermMembership(ctx, db.CreateTermMembershipParams{
			MemberID:  memberID,
			TermID:    term.ID,
			StartDate: term.StartDate,
			EndDate:   term.EndDate,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

type SetGroupMembershipParams struct {
	MemberID  int64
	GroupCode string
	GroupName string
	Start     time.Time
	End       *time.Time
}

// SetGroupMembership records the member's political group over a date
// range, creating the group on first sight. A membership overlapping an
// existing one for the same member is rejected.
func (s Service) SetGroupMembership(ctx context.Context, arg SetGroupMembershipParams) (db.GroupMembership, error) {
	ctx, span := tracer.Start(ctx, "SetGroupMembership")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("member_id", arg.MemberID),
		attribute.String("group", arg.GroupCode),
	)

	group, err := s.qry.GetGroupByCode(ctx, arg.GroupCode)
	if errors.Is(err, sql.ErrNoRows) {
		group, err = s.qry.CreateGroup(ctx, db.CreateGroupParams{
			Code: arg.GroupCode,
			Name: arg.GroupName,
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.GroupMembership{}, err
	}

	overlapping, err := s.qry.ListOverlappingGroupMemberships(ctx, db.ListOverlappingGroupMembershipsParams{
		MemberID:  arg.MemberID,
		StartDate: arg.Start.Format(time.DateOnly),
		EndDate:   nullDate(arg.End),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.GroupMembership{}, err
	}
	if len(overlapping) > 0 {
		span.SetStatus(codes.Error, ErrOverlappingGroupMembership.Error())
		return db.GroupMembership{}, fmt.Errorf(
			"member %d from %s: %w",
			arg.MemberID, arg.Start.Format(time.DateOnly), ErrOverlappingGroupMembership,
		)
	}

	membership, err := s.qry.CreateGroupMembership(ctx, db.CreateGroupMembershipParams{
		MemberID:  arg.MemberID,
		GroupID:   group.ID,
		StartDate: arg.Start.Format(time.DateOnly),
		EndDate:   nullDate(arg.End),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.GroupMembership{}, err
	}
	return membership, nil
}

// ActiveMembersAt returns the members with a term membership covering the
// given date.
func (s Service) ActiveMembersAt(ctx context.Context, date time.Time) ([]db.Member, error) {
	ctx, span := tracer.Start(ctx, "ActiveMembersAt")
	defer span.End()

	members, err := s.qry.ListActiveMembersAt(ctx, date.Format(time.DateOnly))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return members, nil
}

func (s Service) CountActiveMembersAt(ctx context.Context, date time.Time) (int64, error) {
	return s.qry.CountActiveMembersAt(ctx, date.Format(time.DateOnly))
}

// GroupAt returns the member's group on the given date, if any.
func (s Service) GroupAt(ctx context.Context, memberID int64, date time.Time) (db.Group, bool, error) {
	ctx, span := tracer.Start(ctx, "GroupAt")
	defer span.End()

	group, err := s.qry.GetMemberGroupAt(ctx, db.GetMemberGroupAtParams{
		MemberID: memberID,
		Date:     date.Format(time.DateOnly),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return db.Group{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Group{}, false, err
	}
	return group, true, nil
}
