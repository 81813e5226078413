package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestNewGormAftersalesRepository(t *testing.T) {
	db, _, mockDB := newMockDB(t)
	defer mockDB.Close()

	repo := NewGormAftersalesRepository(db)
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestGormAftersalesRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound for missing request", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "aftersales_requests"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAftersalesRepository_FindActiveByOrderItem(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormAftersalesRepository(db)

	requestID := uuid.New()
	orderItemID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "aftersales_number", "order_item_id", "state", "stage", "type", "reason", "version"}).
		AddRow(requestID, "AS-20260830-000001", orderItemID, "PENDING_APPROVAL", "APPLY", "REFUND_ONLY", "QUALITY_ISSUE", 1)

	mock.ExpectQuery(`SELECT \* FROM "aftersales_requests" WHERE order_item_id = \$1 AND state NOT IN`).
		WillReturnRows(rows)

	requests, err := repo.FindActiveByOrderItem(context.Background(), orderItemID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, requestID, requests[0].GetID())
	assert.Equal(t, aftersales.StatePendingApproval, requests[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAftersalesRepository_SaveWithLock(t *testing.T) {
	t.Run("returns conflict when stored version moved on", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		request := &aftersales.AftersalesRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			AftersalesNumber:  "AS-20260830-000001",
			State:             aftersales.StatePendingRefund,
			Stage:             aftersales.StageRefund,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "aftersales_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "aftersales_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), request, 1)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when the row is gone", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		request := &aftersales.AftersalesRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			AftersalesNumber:  "AS-20260830-000002",
			State:             aftersales.StatePendingRefund,
			Stage:             aftersales.StageRefund,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "aftersales_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "aftersales_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), request, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bumps the aggregate version on success", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		request := &aftersales.AftersalesRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			AftersalesNumber:  "AS-20260830-000003",
			State:             aftersales.StateCompleted,
			Stage:             aftersales.StageComplete,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "aftersales_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), request, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, request.GetVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAftersalesRepository_NextNumber(t *testing.T) {
	t.Run("starts at one when no requests exist today", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "aftersales_requests" WHERE aftersales_number LIKE`).
			WillReturnError(gorm.ErrRecordNotFound)

		number, err := repo.NextNumber(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^AS-\d{8}-000001$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest number of the day", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAftersalesRepository(db)

		rows := sqlmock.NewRows([]string{"id", "aftersales_number"}).
			AddRow(uuid.New(), "AS-20260830-000041")
		mock.ExpectQuery(`SELECT \* FROM "aftersales_requests" WHERE aftersales_number LIKE`).
			WillReturnRows(rows)

		number, err := repo.NextNumber(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^AS-\d{8}-000042$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "state", ValidateSortField("state", AftersalesSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", AftersalesSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("1; DROP TABLE", AftersalesSortFields, "created_at"))
}

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder("sideways"))
}
