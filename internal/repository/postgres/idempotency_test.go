package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

func TestIdempotencyRepository_Save_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewIdempotencyRepository(db)

	mock.ExpectExec("INSERT INTO idempotency_keys").
		WillReturnError(&pq.Error{Code: "23505"})

	record := &domain.IdempotencyRecord{
		Key:          "idem-1",
		Endpoint:     "/v1/rides",
		ResponseCode: 201,
		ResponseBody: json.RawMessage(`{"id":"ride-1"}`),
		ExpiresAt:    time.Now().Add(domain.IdempotencyRecordTTL),
		CreatedAt:    time.Now(),
	}
	err = repo.Save(context.Background(), record)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewIdempotencyRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "key", "endpoint", "response_code", "response_body", "expires_at", "created_at"}).
		AddRow(int64(1), "idem-1", "/v1/rides", 201, []byte(`{"id":"ride-1"}`), now.Add(24*time.Hour), now)

	mock.ExpectQuery("SELECT (.+) FROM idempotency_keys").
		WithArgs("idem-1", "/v1/rides").
		WillReturnRows(rows)

	record, err := repo.Get(context.Background(), "idem-1", "/v1/rides")
	require.NoError(t, err)
	assert.Equal(t, 201, record.ResponseCode)
	assert.JSONEq(t, `{"id":"ride-1"}`, string(record.ResponseBody))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewIdempotencyRepository(db)

	mock.ExpectExec("DELETE FROM idempotency_keys").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
