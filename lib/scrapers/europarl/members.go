package europarl

import (
	"context"
	"encoding/xml"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MemberEntry is one <mep> node of the directory XML feed.
type MemberEntry struct {
	WebID          int64  `xml:"id"`
	FullName       string `xml:"fullName"`
	Country        string `xml:"country"`
	PoliticalGroup string `xml:"politicalGroup"`
}

type memberDirectory struct {
	XMLName xml.Name      `xml:"meps"`
	Members []MemberEntry `xml:"mep"`
}

// Members fetches the full member roster for a parliamentary term from
// the directory XML feed.
func (c *Client) Members(ctx context.Context, term int64) ([]MemberEntry, error) {
	ctx, span := tracer.Start(ctx, "Members")
	defer span.End()
	span.SetAttributes(attribute.Int64("term", term))

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("leg", fmt.Sprintf("%d", term)).
		Get("/meps/en/directory/xml/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("member directory returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var directory memberDirectory
	err = xml.Unmarshal(res.Body(), &directory)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal member directory")
		return nil, fmt.Errorf("unmarshal member directory: %w", err)
	}

	span.SetAttributes(attribute.Int("member_count", len(directory.Members)))
	return directory.Members, nil
}
