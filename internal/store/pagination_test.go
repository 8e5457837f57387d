package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		expectedPage int
		expectedSize int
	}{
		{name: "valid parameters", page: 2, pageSize: 20, expectedPage: 2, expectedSize: 20},
		{name: "zero page defaults to 1", page: 0, pageSize: 10, expectedPage: 1, expectedSize: 10},
		{name: "negative page defaults to 1", page: -5, pageSize: 10, expectedPage: 1, expectedSize: 10},
		{name: "zero page size defaults to 10", page: 1, pageSize: 0, expectedPage: 1, expectedSize: 10},
		{name: "page size capped at 50", page: 1, pageSize: 100, expectedPage: 1, expectedSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NewPaginationParams(tt.page, tt.pageSize, "alice")

			assert.Equal(t, tt.expectedPage, params.Page)
			assert.Equal(t, tt.expectedSize, params.PageSize)
			assert.Equal(t, "alice", params.Search)
		})
	}
}

func TestNewPaginationResult(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		page        int
		totalPages  int
		wantHasPrev bool
		wantHasNext bool
	}{
		{name: "first of many", total: 100, page: 1, totalPages: 10, wantHasNext: true},
		{name: "middle page", total: 100, page: 5, totalPages: 10, wantHasPrev: true, wantHasNext: true},
		{name: "last page", total: 100, page: 10, totalPages: 10, wantHasPrev: true},
		{name: "partial last page", total: 25, page: 3, totalPages: 3, wantHasPrev: true},
		{name: "empty", total: 0, page: 1, totalPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newPaginationResult(tt.total, NewPaginationParams(tt.page, 10, ""))

			assert.Equal(t, tt.total, result.Total)
			assert.Equal(t, tt.page, result.CurrentPage)
			assert.Equal(t, tt.totalPages, result.TotalPages)
			assert.Equal(t, tt.wantHasPrev, result.HasPrev)
			assert.Equal(t, tt.wantHasNext, result.HasNext)
		})
	}
}
