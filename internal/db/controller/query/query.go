// Package query provides shared helpers for paginated list queries.
package query

import "strings"

const (
	// DefaultPage is the first page of any list query.
	DefaultPage = 1

	// EscapeChar is the LIKE escape character used by LikePattern.
	// Queries using LikePattern must carry a matching "ESCAPE '!'" clause.
	EscapeChar = '!'
)

var likeEscaper = strings.NewReplacer(
	"!", "!!",
	"%", "!%",
	"_", "!_",
)

// Normalize clamps page and pageSize to sane values, applying the given
// default page size when none was supplied.
func Normalize(page, pageSize, defaultPageSize int) (int, int) {
	if page < DefaultPage {
		page = DefaultPage
	}

	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	return page, pageSize
}

// Offset computes the number of records to skip for offset pagination.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// HasNext reports whether more records exist beyond the returned page.
func HasNext(total int64, offset, returned int) bool {
	return total > int64(offset+returned)
}

// LikePattern builds a case-insensitive substring LIKE pattern from user
// supplied search text. LIKE metacharacters are escaped with EscapeChar so
// adversarial input cannot change the match semantics.
func LikePattern(search string) string {
	return "%" + strings.ToLower(likeEscaper.Replace(search)) + "%"
}
