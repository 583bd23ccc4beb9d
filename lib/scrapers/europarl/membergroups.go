package europarl

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"epvotes-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GroupActivity is one political-group affiliation entry from a member's
// profile history page. End is nil while the affiliation is ongoing.
type GroupActivity struct {
	GroupCode string
	GroupName string
	Start     time.Time
	End       *time.Time
}

// group codes keyed by how the profile pages spell the group out
var groupCodesByName = map[string]string{
	"Group of the European People's Party (Christian Democrats)":                               "EPP",
	"Group of the Progressive Alliance of Socialists and Democrats in the European Parliament": "SD",
	"Renew Europe Group": "RENEW",
	"Group of the Greens/European Free Alliance":                       "GREENS",
	"Identity and Democracy Group":                                     "ID",
	"European Conservatives and Reformists Group":                      "ECR",
	"The Left group in the European Parliament - GUE/NGL":              "GUE",
	"Confederal Group of the European United Left - Nordic Green Left": "GUE",
	"Confederal Group of the European United Left/Nordic Green Left":   "GUE",
	"Non-attached Members":                                             "NI",
}

// MemberGroups scrapes a member's political-group history for a term from
// the same profile page MemberInfo reads. Entries render as
// "02-07-2019 / 15-01-2020 : <group name> - Member"; an ongoing entry
// replaces the second date with an ellipsis.
func (c *Client) MemberGroups(ctx context.Context, webID int64, term int64) ([]GroupActivity, error) {
	ctx, span := tracer.Start(ctx, "MemberGroups")
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
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("member profile returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse member profile")
		return nil, fmt.Errorf("parse member profile: %w", err)
	}

	activities, err := parseGroupActivities(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("member %d: %w", webID, err)
	}

	span.SetAttributes(attribute.Int("activity_count", len(activities)))
	return activities, nil
}

func parseGroupActivities(doc *goquery.Document) ([]GroupActivity, error) {
	var activities []GroupActivity
	var parseErr error

	doc.Find("#status .erpl_meps-status").EachWithBreak(func(i int, block *goquery.Selection) bool {
		heading := htmlutil.SelectionText(block.Find("h4"))
		if !strings.HasPrefix(heading, "Political groups") {
			return true
		}

		block.Find("ul li").EachWithBreak(func(i int, entry *goquery.Selection) bool {
			activity, err := parseGroupActivity(htmlutil.SelectionText(entry))
			if err != nil {
				parseErr = err
				return false
			}
			activities = append(activities, activity)
			return true
		})
		return parseErr == nil
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return activities, nil
}

func parseGroupActivity(raw string) (GroupActivity, error) {
	dates, rest, found := strings.Cut(raw, " : ")
	if !found {
		return GroupActivity{}, fmt.Errorf("malformed group entry %q", raw)
	}

	startRaw, endRaw, found := strings.Cut(dates, " / ")
	if !found {
		return GroupActivity{}, fmt.Errorf("malformed group entry dates %q", raw)
	}
	start, err := time.Parse("02-01-2006", strings.TrimSpace(startRaw))
	if err != nil {
		return GroupActivity{}, fmt.Errorf("malformed group entry start date %q: %w", raw, err)
	}
	var end *time.Time
	endRaw = strings.TrimSpace(endRaw)
	if endRaw != "" && endRaw != "..." {
		parsed, err := time.Parse("02-01-2006", endRaw)
		if err != nil {
			return GroupActivity{}, fmt.Errorf("malformed group entry end date %q: %w", raw, err)
		}
		end = &parsed
	}

	// the trailing " - Member" / " - Chair" role suffix is not kept
	name := rest
	if idx := strings.LastIndex(rest, " - "); idx >= 0 {
		name = rest[:idx]
	}
	name = strings.TrimSpace(name)

	code, ok := groupCodesByName[name]
	if !ok {
		// some group names carry their own " - " infix and no role suffix
		name = strings.TrimSpace(rest)
		code, ok = groupCodesByName[name]
	}
	if !ok {
		return GroupActivity{}, fmt.Errorf("unknown political group %q", name)
	}

	return GroupActivity{
		GroupCode: code,
		GroupName: name,
		Start:     start,
		End:       end,
	}, nil
}
