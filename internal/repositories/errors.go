package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers translated into domain errors
const (
	errDuplicateEntry  uint16 = 1062
	errRowIsReferenced uint16 = 1451
	errNoReferencedRow uint16 = 1452
)

// mysqlErrorNumber returns the server error number of err, or 0
func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

func isDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == errDuplicateEntry
}

func isRowReferenced(err error) bool {
	return mysqlErrorNumber(err) == errRowIsReferenced
}

func isMissingParent(err error) bool {
	return mysqlErrorNumber(err) == errNoReferencedRow
}

// updateBuilder accumulates the SET clause of a partial update
type updateBuilder struct {
	parts []string
	args  []any
}

func (b *updateBuilder) set(column string, value any) {
	b.parts = append(b.parts, column+" = ?")
	b.args = append(b.args, value)
}

func (b *updateBuilder) empty() bool {
	return len(b.parts) == 0
}

func (b *updateBuilder) clause() string {
	return strings.Join(b.parts, ", ")
}
