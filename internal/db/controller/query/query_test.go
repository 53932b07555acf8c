package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name             string
		page             int
		pageSize         int
		defaultPageSize  int
		expectedPage     int
		expectedPageSize int
	}{
		{name: "defaults applied", page: 0, pageSize: 0, defaultPageSize: 20, expectedPage: 1, expectedPageSize: 20},
		{name: "negative page clamped", page: -3, pageSize: 5, defaultPageSize: 20, expectedPage: 1, expectedPageSize: 5},
		{name: "explicit values kept", page: 4, pageSize: 10, defaultPageSize: 20, expectedPage: 4, expectedPageSize: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, pageSize := Normalize(tc.page, tc.pageSize, tc.defaultPageSize)
			assert.Equal(t, tc.expectedPage, page)
			assert.Equal(t, tc.expectedPageSize, pageSize)
		})
	}
}

func TestOffsetAndHasNext(t *testing.T) {
	// page=2, pageSize=20, totalMatches=45 -> offset=20, hasNext true
	offset := Offset(2, 20)
	assert.Equal(t, 20, offset)
	assert.True(t, HasNext(45, offset, 20))

	// last page: 45 > 40+5 is false
	assert.False(t, HasNext(45, Offset(3, 20), 5))

	// empty result set
	assert.False(t, HasNext(0, Offset(1, 20), 0))
}

func TestLikePattern(t *testing.T) {
	testCases := []struct {
		name     string
		search   string
		expected string
	}{
		{name: "plain text lowered", search: "John", expected: "%john%"},
		{name: "percent escaped", search: "100%", expected: "%100!%%"},
		{name: "underscore escaped", search: "go_dev", expected: "%go!_dev%"},
		{name: "escape char doubled", search: "a!b", expected: "%a!!b%"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, LikePattern(tc.search))
		})
	}
}
