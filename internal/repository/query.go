package repository

import (
	"fmt"

	"github.com/lib/pq"
)

// anyFilter appends "AND <column> = ANY($n)" when ids is non-nil. A nil slice means no filter;
// an empty non-nil slice matches nothing, which keeps callers from widening a scope by accident.
func anyFilter(query string, args []interface{}, column string, ids []string) (string, []interface{}) {
	if ids == nil {
		return query, args
	}
	args = append(args, pq.Array(ids))
	return query + fmt.Sprintf(" AND %s = ANY($%d)", column, len(args)), args
}
