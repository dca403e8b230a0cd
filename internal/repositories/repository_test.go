package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a mock database shared by the repository tests
func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// assertRepoError checks the outcome of a repository call against a table case
func assertRepoError(t *testing.T, err error, expectedError bool, errorContains string, errorKind apperrors.Kind) {
	t.Helper()
	if !expectedError {
		assert.NoError(t, err)
		return
	}
	require.Error(t, err)
	if errorContains != "" {
		assert.Contains(t, err.Error(), errorContains)
	}
	if errorKind != "" {
		assert.Equal(t, errorKind, apperrors.KindOf(err))
	}
}

var (
	errDatabase       = errors.New("database error")
	duplicateEntryErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-5' for key 'uq_enrollments_user_course'"}
	rowReferencedErr  = &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}
	missingParentErr  = &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
)

func TestMySQLErrorTranslation(t *testing.T) {
	assert.True(t, isDuplicateEntry(duplicateEntryErr))
	assert.False(t, isDuplicateEntry(errDatabase))
	assert.True(t, isRowReferenced(rowReferencedErr))
	assert.True(t, isMissingParent(missingParentErr))
	assert.Equal(t, uint16(0), mysqlErrorNumber(nil))
}

func TestUpdateBuilder(t *testing.T) {
	var b updateBuilder
	assert.True(t, b.empty())

	b.set("title", "New")
	b.set("status", "inactive")

	assert.False(t, b.empty())
	assert.Equal(t, "title = ?, status = ?", b.clause())
	assert.Equal(t, []any{"New", "inactive"}, b.args)
}
