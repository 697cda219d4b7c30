package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kachapon/seminar-registration/internal/model"
)

func TestRegistrantRepo_NameExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRegistrantRepo(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Somchai", "Jaidee").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.NameExists(ctx, " Somchai ", "Jaidee")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestRegistrantRepo_CreateTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRegistrantRepo(db)
	ctx := context.Background()

	t.Run("WithTransportation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO registrants").
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec("INSERT INTO transportations").
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectCommit()

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		reg := &model.Registrant{
			TicketCode: "CCI-A1B2C3", FirstName: "Somchai", LastName: "Jaidee",
			Email: "somchai@example.com", Phone: "0812345678",
			OrgName: "Ministry of Energy", OrgTypeID: 1,
			LocationType: model.LocationBangkok, AttendanceType: model.AttendanceMorning,
		}
		trans := &model.Transportation{TransportType: model.TransportWalking}
		require.NoError(t, repo.CreateTx(ctx, tx, reg, trans))
		require.NoError(t, tx.Commit())

		assert.Equal(t, uint64(7), reg.ID)
		assert.Equal(t, uint64(7), trans.RegistrantID)
		assert.Equal(t, uint64(3), trans.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CodeCollision", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO registrants").
			WillReturnError(&mockMySQLError{})
		mock.ExpectRollback()

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		reg := &model.Registrant{TicketCode: "CCI-A1B2C3"}
		err = repo.CreateTx(ctx, tx, reg, nil)
		assert.ErrorIs(t, err, ErrCodeCollision)
		require.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// mockMySQLError mimics the driver's duplicate-key message containing
// error number 1062.
type mockMySQLError struct{}

func (*mockMySQLError) Error() string {
	return "Error 1062 (23000): Duplicate entry 'CCI-A1B2C3' for key 'registrants.ticket_code'"
}

func TestRegistrantRepo_UpdateCheckInStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Swapped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET check_in_status").
			WithArgs(1, "CCI-A1B2C3", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateCheckInStatus(ctx, "CCI-A1B2C3", 0, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRace", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET check_in_status").
			WithArgs(1, "CCI-A1B2C3", 0).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("CCI-A1B2C3").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.ErrorIs(t, repo.UpdateCheckInStatus(ctx, "CCI-A1B2C3", 0, 1), ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownCode", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET check_in_status").
			WithArgs(2, "CCI-ZZZZZZ", 0).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("CCI-ZZZZZZ").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		assert.ErrorIs(t, repo.UpdateCheckInStatus(ctx, "CCI-ZZZZZZ", 0, 2), ErrRegistrantNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrantRepo_RedeemConsumable(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstRedemption", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET beverage_status").
			WithArgs("CCI-A1B2C3").
			WillReturnResult(sqlmock.NewResult(0, 1))

		already, err := repo.RedeemConsumable(ctx, "CCI-A1B2C3", "beverage_status")
		assert.NoError(t, err)
		assert.False(t, already)
	})

	t.Run("AlreadyRedeemedIsNotAnError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET beverage_status").
			WithArgs("CCI-A1B2C3").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("CCI-A1B2C3").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		already, err := repo.RedeemConsumable(ctx, "CCI-A1B2C3", "beverage_status")
		assert.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRegistrantRepo(db)

		mock.ExpectExec("UPDATE registrants SET food_status").
			WithArgs("CCI-ZZZZZZ").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("CCI-ZZZZZZ").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err = repo.RedeemConsumable(ctx, "CCI-ZZZZZZ", "food_status")
		assert.ErrorIs(t, err, ErrRegistrantNotFound)
	})
}

func TestRegistrantRepo_GetByCodeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRegistrantRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM registrants WHERE ticket_code").
		WithArgs("CCI-ZZZZZZ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByCode(context.Background(), "CCI-ZZZZZZ")
	assert.ErrorIs(t, err, ErrRegistrantNotFound)
}
