package epapi

import (
	"context"
	"fmt"
	"time"

	"epvotes-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/epapi")

// Client talks to the vote-data JSON API that parses doceo vote pages and
// voting-list PDFs into structured payloads.
type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Minute * 2)
	telemetry.InstrumentResty(client, "scrapers/epapi/http")

	return &Client{Http: client}
}

// VoteResults fetches every structured vote-result record for a term and
// sitting date.
func (c *Client) VoteResults(ctx context.Context, term int64, date time.Time) ([]VoteResult, error) {
	ctx, span := tracer.Start(ctx, "VoteResults")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("term", term),
		attribute.String("date", date.Format(time.DateOnly)),
	)

	var results []VoteResult
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term": fmt.Sprintf("%d", term),
			"date": date.Format(time.DateOnly),
		}).
		SetResult(&results).
		Get("/vote_results")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("vote_results returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("vote_count", len(results)))
	return results, nil
}

// VotingLists fetches the tabulated voting lists for a term and sitting
// date.
func (c *Client) VotingLists(ctx context.Context, term int64, date time.Time) ([]VotingListResult, error) {
	ctx, span := tracer.Start(ctx, "VotingLists")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("term", term),
		attribute.String("date", date.Format(time.DateOnly)),
	)

	var results []VotingListResult
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term": fmt.Sprintf("%d", term),
			"date": date.Format(time.DateOnly),
		}).
		SetResult(&results).
		Get("/voting_lists")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("voting_lists returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("list_count", len(results)))
	return results, nil
}
