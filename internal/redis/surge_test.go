package redis

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurgeStore_RecordDemand(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewSurgeStore(client)

	mock.ExpectIncr("surge:demand:12.97:77.59").SetVal(3)
	mock.ExpectExpire("surge:demand:12.97:77.59", SurgeDemandTTL).SetVal(true)

	err := store.RecordDemand(context.Background(), "12.97:77.59")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurgeStore_GetDemand(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewSurgeStore(client)

	mock.ExpectGet("surge:demand:12.97:77.59").SetVal("7")
	n, err := store.GetDemand(context.Background(), "12.97:77.59")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	mock.ExpectGet("surge:demand:0.00:0.00").RedisNil()
	n, err = store.GetDemand(context.Background(), "0.00:0.00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurgeStore_MultiplierCache(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewSurgeStore(client)

	mock.ExpectGet("surge:multiplier:12.97:77.59").RedisNil()
	_, ok, err := store.GetMultiplier(context.Background(), "12.97:77.59")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSet("surge:multiplier:12.97:77.59", "1.75", SurgeMultiplierTTL).SetVal("OK")
	require.NoError(t, store.SetMultiplier(context.Background(), "12.97:77.59", 1.75))

	mock.ExpectGet("surge:multiplier:12.97:77.59").SetVal("1.75")
	m, ok, err := store.GetMultiplier(context.Background(), "12.97:77.59")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.75, m, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}
