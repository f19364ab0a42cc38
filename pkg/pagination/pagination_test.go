// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novagate/account-portal/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and clamping of the page/limit pair.
*/
func TestFromRequest(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		expectedPage  int
		expectedLimit int
	}{
		{name: "defaults", url: "/activities", expectedPage: 1, expectedLimit: 20},
		{name: "explicit values", url: "/activities?page=3&limit=50", expectedPage: 3, expectedLimit: 50},
		{name: "zero page clamps", url: "/activities?page=0", expectedPage: 1, expectedLimit: 20},
		{name: "negative page clamps", url: "/activities?page=-2", expectedPage: 1, expectedLimit: 20},
		{name: "excessive limit clamps", url: "/activities?limit=5000", expectedPage: 1, expectedLimit: 20},
		{name: "garbage falls back", url: "/activities?page=abc&limit=xyz", expectedPage: 1, expectedLimit: 20},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", testCase.url, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, testCase.expectedPage, params.Page)
			assert.Equal(t, testCase.expectedLimit, params.Limit)
		})
	}
}

/*
TestParams_Window verifies the in-memory slice bounds, including pages past
the end of the list.
*/
func TestParams_Window(t *testing.T) {
	testCases := []struct {
		name          string
		params        pagination.Params
		n             int
		expectedStart int
		expectedEnd   int
	}{
		{name: "first page", params: pagination.Params{Page: 1, Limit: 2}, n: 5, expectedStart: 0, expectedEnd: 2},
		{name: "middle page", params: pagination.Params{Page: 2, Limit: 2}, n: 5, expectedStart: 2, expectedEnd: 4},
		{name: "partial last page", params: pagination.Params{Page: 3, Limit: 2}, n: 5, expectedStart: 4, expectedEnd: 5},
		{name: "page past the end", params: pagination.Params{Page: 9, Limit: 2}, n: 5, expectedStart: 5, expectedEnd: 5},
		{name: "empty list", params: pagination.Params{Page: 1, Limit: 20}, n: 0, expectedStart: 0, expectedEnd: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			start, end := testCase.params.Window(testCase.n)
			assert.Equal(t, testCase.expectedStart, start)
			assert.Equal(t, testCase.expectedEnd, end)
		})
	}
}

/*
TestNewMeta verifies the derived total_pages arithmetic.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 10, 25)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.Limit)
	assert.Equal(t, 25, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := pagination.NewMeta(1, 10, 0)
	assert.Zero(t, empty.TotalPages)
}
