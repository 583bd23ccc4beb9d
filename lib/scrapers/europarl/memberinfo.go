package europarl

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"epvotes-backend/lib/htmlutil"
	"epvotes-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type MemberInfo struct {
	WebID       int64
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Country     string
}

// MemberInfo scrapes a member's profile history page for a term. Name and
// country always render; the birth date block is missing for some members.
func (c *Client) MemberInfo(ctx context.Context, webID int64, term int64) (MemberInfo, error) {
	ctx, span := tracer.Start(ctx, "MemberInfo")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("web_id", webID),
		attribute.Int64("term", term),
	)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/meps/en/%d/NAME/history/%d", webID, term))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return MemberInfo{}, err
	}
	if res.IsError() {
		err := fmt.Errorf("member profile returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return MemberInfo{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse member profile")
		return MemberInfo{}, fmt.Errorf("parse member profile: %w", err)
	}

	fullName := htmlutil.SelectionText(doc.Find("#presentationmep div.erpl_title-h1"))
	if fullName == "" {
		err := fmt.Errorf("member profile for %d has no name heading", webID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return MemberInfo{}, err
	}
	first, last := textutil.ParseFullName(fullName)

	info := MemberInfo{
		WebID:     webID,
		FirstName: first,
		LastName:  last,
		Country:   parseCountry(doc),
	}
	info.DateOfBirth = parseBirthDate(htmlutil.SelectionText(doc.Find("#birthDate")))

	return info, nil
}

// country renders as "Austria - ÖVP (...)" in the title subheading
func parseCountry(doc *goquery.Document) string {
	raw := htmlutil.SelectionText(doc.Find("#presentationmep div.erpl_title-h3"))
	country, _, _ := strings.Cut(raw, "-")
	return strings.TrimSpace(country)
}

// birth dates render as "dd-mm-yyyy"
func parseBirthDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return nil
	}
	day, err1 := strconv.Atoi(raw[:2])
	month, err2 := strconv.Atoi(raw[3:5])
	year, err3 := strconv.Atoi(raw[6:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &date
}
