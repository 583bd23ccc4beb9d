package epapi

import (
	"fmt"
	"time"
)

// ProcedureRef is the legislative procedure attached to a document
// reference, when the source publishes one.
type ProcedureRef struct {
	Title string `json:"title"`
}

// DocumentRef identifies a legislative document by its natural key
// together with the freshly scraped title.
type DocumentRef struct {
	Type      string        `json:"type"`
	Number    int64         `json:"number"`
	Year      int64         `json:"year"`
	Title     string        `json:"title"`
	Procedure *ProcedureRef `json:"procedure"`
}

type MemberPosition struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// VoteResult is one structured vote-result record for a sitting date.
type VoteResult struct {
	DoceoVoteID        int64            `json:"doceo_vote_id"`
	Date               string           `json:"date"`
	Description        string           `json:"description"`
	SubvoteDescription string           `json:"subvote_description"`
	Type               string           `json:"type"`
	DocumentRef        *DocumentRef     `json:"document_ref"`
	MemberPositions    []MemberPosition `json:"member_positions"`
}

func (v VoteResult) ParseDate() (time.Time, error) {
	if v.Date == "" {
		return time.Time{}, fmt.Errorf("vote result %d has no date", v.DoceoVoteID)
	}
	date, err := time.Parse(time.DateOnly, v.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("vote result %d has malformed date %q: %w", v.DoceoVoteID, v.Date, err)
	}
	return date, nil
}

// VotingListResult is one tabulated voting list, scraped independently of
// the structured vote results.
type VotingListResult struct {
	DoceoVoteID *int64         `json:"doceo_vote_id"`
	Date        string         `json:"date"`
	Description string         `json:"description"`
	Stats       map[string]int `json:"stats"`
}
