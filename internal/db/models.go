package db

import "database/sql"

// Dates are stored as ISO "YYYY-MM-DD" strings so range comparisons work
// lexicographically in sqlite.

type Term struct {
	ID        int64
	Number    int64
	StartDate string
	EndDate   sql.NullString
}

type Member struct {
	ID                  int64
	WebID               int64
	FirstName           string
	LastName            string
	FirstNameNormalized string
	LastNameNormalized  string
	DateOfBirth         sql.NullString
	CountryCode         sql.NullString
}

type TermMembership struct {
	ID        int64
	MemberID  int64
	TermID    int64
	StartDate string
	EndDate   sql.NullString
}

type Group struct {
	ID   int64
	Code string
	Name string
}

type GroupMembership struct {
	ID        int64
	MemberID  int64
	GroupID   int64
	StartDate string
	EndDate   sql.NullString
}

type Procedure struct {
	ID    int64
	Title string
}

type Document struct {
	ID          int64
	Type        string
	TermID      int64
	Number      int64
	Year        int64
	Title       string
	ProcedureID sql.NullInt64
}

type Vote struct {
	ID                 int64
	DoceoVoteID        int64
	TermID             int64
	Date               string
	Description        string
	SubvoteDescription sql.NullString
	Type               string
	DocumentID         sql.NullInt64
	Stats              sql.NullString
}

type VoteMemberPosition struct {
	VoteID   int64
	MemberID int64
	Position Position
}

type VotingList struct {
	ID          int64
	TermID      int64
	Date        string
	Description string
	DoceoVoteID sql.NullInt64
	VoteID      sql.NullInt64
	Stats       sql.NullString
}
