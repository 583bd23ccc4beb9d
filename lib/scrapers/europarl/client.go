package europarl

import (
	"fmt"
	"net/url"
	"time"

	"epvotes-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://europarl.europa.eu"

// Client scrapes the public europarl.europa.eu website: the member
// directory XML feed and per-member profile pages.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	rawUrl := opts.BaseUrl
	if rawUrl == "" {
		rawUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(rawUrl)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/europarl/http")
	if restyInstrumentOutput != nil {
		// debug dumps of raw traffic, see restyutil
		instrumentRawOutput(client)
	}

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}
