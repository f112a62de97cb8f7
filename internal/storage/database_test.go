package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockedDatabaseStore(t *testing.T) (*DatabaseStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewDatabaseStore(gormDB), mock
}

func TestDatabaseStore_MarkNotificationRead_Unread(t *testing.T) {
	store, mock := newMockedDatabaseStore(t)

	mock.ExpectExec(`UPDATE "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.MarkNotificationRead(5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_MarkNotificationRead_AlreadyRead(t *testing.T) {
	store, mock := newMockedDatabaseStore(t)

	// The guarded update skips an already-read record, so the original
	// read_at survives; the record exists, so the call still succeeds
	mock.ExpectExec(`UPDATE "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, store.MarkNotificationRead(5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStore_MarkNotificationRead_Foreign(t *testing.T) {
	store, mock := newMockedDatabaseStore(t)

	mock.ExpectExec(`UPDATE "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.ErrorIs(t, store.MarkNotificationRead(5, 1), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
