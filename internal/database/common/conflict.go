package common

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type ConflictStyle int

const (
	// OnConflict is the postgres/sqlite "ON CONFLICT (col) DO ..." form.
	OnConflict ConflictStyle = iota
	// DuplicateKey is the mysql "INSERT IGNORE" / "ON DUPLICATE KEY UPDATE" form.
	DuplicateKey
)

func (s ConflictStyle) IgnoreConflict(insert squirrel.InsertBuilder, column string) squirrel.InsertBuilder {
	if s == DuplicateKey {
		return insert.Options("IGNORE")
	}
	return insert.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", column))
}

func (s ConflictStyle) Upsert(insert squirrel.InsertBuilder, column string, update ...string) squirrel.InsertBuilder {
	sets := make([]string, 0, len(update))
	for _, col := range update {
		if s == DuplicateKey {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", col, col))
		} else {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	if s == DuplicateKey {
		return insert.Suffix("ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	}
	return insert.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", column, strings.Join(sets, ", ")))
}
