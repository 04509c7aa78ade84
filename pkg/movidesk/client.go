package movidesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ErrMalformedListing indicates an ID listing response that could not be
// decoded. The caller excludes the batch and carries on with what it has.
var ErrMalformedListing = errors.New("malformed ticket listing response")

type Config struct {
	BaseURL string
	Token   string
}

// Client talks to the Movidesk public ticket API. Authentication is a token
// query parameter, which must never end up in logs.
type Client struct {
	http   *httpclient.Client
	config Config
	logger ectologger.Logger
}

func NewClient(config Config, http *httpclient.Client, logger ectologger.Logger) *Client {
	return &Client{
		http:   http,
		config: config,
		logger: logger,
	}
}

// ListTicketIDs returns the ids visible on the current ticket listing.
func (c *Client) ListTicketIDs(ctx context.Context) ([]string, error) {
	return c.listIDs(ctx, c.config.BaseURL)
}

// ListPastTicketIDs returns the ids from the archived ticket partition.
func (c *Client) ListPastTicketIDs(ctx context.Context) ([]string, error) {
	return c.listIDs(ctx, c.config.BaseURL+"/past")
}

func (c *Client) listIDs(ctx context.Context, endpoint string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "movidesk.listIDs")
	defer span.End()

	query := url.Values{}
	query.Set("token", c.config.Token)
	query.Set("$select", "id")

	resp, err := c.http.Get(ctx, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket ids: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httperror.NewHTTPErrorf(resp.StatusCode, "ticket listing returned status %d", resp.StatusCode)
	}

	var listing []struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &listing); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("failed to decode ticket listing")
		return nil, ErrMalformedListing
	}

	ids := make([]string, 0, len(listing))
	for _, entry := range listing {
		if entry.ID == "" {
			continue
		}
		ids = append(ids, entry.ID.String())
	}

	return ids, nil
}

// GetTicket fetches the full detail payload for one ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	ctx, span := tracing.StartSpan(ctx, "movidesk.getTicket")
	defer span.End()

	query := url.Values{}
	query.Set("token", c.config.Token)
	query.Set("id", id)

	resp, err := c.http.Get(ctx, c.config.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httperror.NewHTTPErrorf(resp.StatusCode, "ticket %s fetch returned status %d", id, resp.StatusCode)
	}

	var ticket Ticket
	if err := json.Unmarshal(resp.Body, &ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket %s: %w", id, err)
	}

	return &ticket, nil
}
