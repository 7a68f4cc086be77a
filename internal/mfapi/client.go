// Package mfapi provides a client for api.mfapi.in, the public AMFI NAV
// data source for Indian mutual funds.
package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundwatch/fundwatch/internal/fund"
)

// DefaultBaseURL is the production MFAPI endpoint.
const DefaultBaseURL = "https://api.mfapi.in"

// Client for api.mfapi.in
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new MFAPI client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("client", "mfapi").Logger(),
	}
}

// Scheme is one entry in the provider's full scheme list.
type Scheme struct {
	SchemeCode fund.SchemeCode `json:"schemeCode"`
	SchemeName string          `json:"schemeName"`
}

// navResponse is the provider's wire format for a single fund.
type navResponse struct {
	Meta struct {
		FundHouse      string `json:"fund_house"`
		SchemeType     string `json:"scheme_type"`
		SchemeCategory string `json:"scheme_category"`
		SchemeName     string `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		Nav  string `json:"nav"`
	} `json:"data"`
}

// FundList fetches the full scheme list. When directGrowthOnly is set, the
// list is filtered to Direct Growth plans, excluding IDCW/dividend variants.
func (c *Client) FundList(ctx context.Context, directGrowthOnly bool) ([]Scheme, error) {
	url := c.baseURL + "/mf"
	c.log.Debug().Str("url", url).Msg("Fetching scheme list")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scheme list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheme list returned status %d", resp.StatusCode)
	}

	var all []Scheme
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("failed to parse scheme list: %w", err)
	}

	if !directGrowthOnly {
		return all, nil
	}

	filtered := make([]Scheme, 0, len(all)/10)
	for _, s := range all {
		name := strings.ToLower(s.SchemeName)
		if strings.Contains(name, "direct") &&
			strings.Contains(name, "growth") &&
			!strings.Contains(name, "idcw") &&
			!strings.Contains(name, "dividend") {
			filtered = append(filtered, s)
		}
	}

	c.log.Info().
		Int("total", len(all)).
		Int("direct_growth", len(filtered)).
		Msg("Fetched scheme list")

	return filtered, nil
}

// FetchNav fetches the full NAV history for one fund. Rows with unparseable
// dates or non-positive NAV values are skipped rather than failing the whole
// history; a single bad row must not cost three years of valid data.
func (c *Client) FetchNav(ctx context.Context, code fund.SchemeCode) (*fund.History, error) {
	url := fmt.Sprintf("%s/mf/%d", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NAV request failed for scheme %d: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NAV request for scheme %d returned status %d", code, resp.StatusCode)
	}

	var payload navResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse NAV response for scheme %d: %w", code, err)
	}

	history := &fund.History{
		Code: code,
		Meta: fund.Meta{
			SchemeName:     payload.Meta.SchemeName,
			FundHouse:      fund.CleanFundHouse(payload.Meta.FundHouse),
			SchemeCategory: payload.Meta.SchemeCategory,
		},
		Points: make([]fund.NavPoint, 0, len(payload.Data)),
	}

	skipped := 0
	for _, row := range payload.Data {
		date, err := fund.ParseDate(row.Date)
		if err != nil {
			skipped++
			continue
		}
		value, err := decimal.NewFromString(row.Nav)
		if err != nil || value.Sign() <= 0 {
			skipped++
			continue
		}
		history.Points = append(history.Points, fund.NavPoint{Date: date, Value: value})
	}

	if skipped > 0 {
		c.log.Debug().
			Int("scheme", int(code)).
			Int("skipped", skipped).
			Msg("Skipped malformed NAV rows")
	}

	return history, nil
}

// setHeaders applies the request headers the provider expects. Accept-Encoding
// is left to the transport so gzip decompression stays transparent.
func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
}
