package mfapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwatch/fundwatch/internal/fund"
)

const navFixture = `{
	"meta": {
		"fund_house": "Axis Mutual Fund",
		"scheme_type": "Open Ended Schemes",
		"scheme_category": "Equity Scheme - Small Cap Fund",
		"scheme_code": 120828,
		"scheme_name": "Axis Small Cap Fund - Direct Plan - Growth"
	},
	"data": [
		{"date": "16-08-2024", "nav": "104.2100"},
		{"date": "14-08-2024", "nav": "103.8800"},
		{"date": "not-a-date", "nav": "103.0000"},
		{"date": "13-08-2024", "nav": "garbage"},
		{"date": "12-08-2024", "nav": "-1.0"},
		{"date": "09-08-2024", "nav": "102.5400"}
	],
	"status": "SUCCESS"
}`

const schemeListFixture = `[
	{"schemeCode": 120828, "schemeName": "Axis Small Cap Fund - Direct Plan - Growth"},
	{"schemeCode": 120829, "schemeName": "Axis Small Cap Fund - Direct Plan - IDCW"},
	{"schemeCode": 120830, "schemeName": "Axis Small Cap Fund - Regular Plan - Growth"},
	{"schemeCode": 118550, "schemeName": "HDFC Mid-Cap Opportunities Fund - Growth Option - Direct Plan"},
	{"schemeCode": 118551, "schemeName": "HDFC Mid-Cap Opportunities Fund - Dividend Option - Direct Plan"}
]`

func TestFetchNav(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mf/120828", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(navFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	history, err := client.FetchNav(context.Background(), 120828)
	require.NoError(t, err)

	assert.Equal(t, fund.SchemeCode(120828), history.Code)
	assert.Equal(t, "Axis Small Cap Fund - Direct Plan - Growth", history.Meta.SchemeName)
	assert.Equal(t, "Axis", history.Meta.FundHouse)
	assert.Equal(t, "Equity Scheme - Small Cap Fund", history.Meta.SchemeCategory)

	// Three malformed rows (bad date, bad value, non-positive value) are
	// skipped; the valid rows survive in provider order.
	require.Len(t, history.Points, 3)
	assert.Equal(t, "104.21", history.Points[0].Value.String())
	assert.Equal(t, "102.54", history.Points[2].Value.String())
}

func TestFetchNavHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	_, err := client.FetchNav(context.Background(), 999999)
	assert.Error(t, err)
}

func TestFundListDirectGrowthFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mf", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(schemeListFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	schemes, err := client.FundList(context.Background(), true)
	require.NoError(t, err)

	// Only Direct + Growth plans without IDCW/dividend variants remain.
	require.Len(t, schemes, 2)
	assert.Equal(t, fund.SchemeCode(120828), schemes[0].SchemeCode)
	assert.Equal(t, fund.SchemeCode(118550), schemes[1].SchemeCode)
}

func TestFundListUnfiltered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(schemeListFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())

	schemes, err := client.FundList(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, schemes, 5)
}
