package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"
)

func newMockCache(prefix string) (*Cache, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &Cache{client: db, prefix: prefix}, mock
}

func TestCache_Get_Hit(t *testing.T) {
	c, mock := newMockCache("ts")
	mock.ExpectGet("ts:quote:AAPL").SetVal(`{"last":190.5}`)

	val, found, err := c.Get(context.Background(), "quote:AAPL")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"last":190.5}`, string(val))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Get_Miss(t *testing.T) {
	c, mock := newMockCache("ts")
	mock.ExpectGet("ts:quote:ZZZZ").RedisNil()

	val, found, err := c.Get(context.Background(), "quote:ZZZZ")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, val)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Get_Error(t *testing.T) {
	c, mock := newMockCache("ts")
	mock.ExpectGet("ts:quote:AAPL").SetErr(redis.TxFailedErr)

	_, _, err := c.Get(context.Background(), "quote:AAPL")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Set_WithTTL(t *testing.T) {
	c, mock := newMockCache("")
	mock.ExpectSet("quote:AAPL", []byte("190.5"), time.Minute).SetVal("OK")

	err := c.Set(context.Background(), "quote:AAPL", []byte("190.5"), time.Minute)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Delete(t *testing.T) {
	c, mock := newMockCache("")
	mock.ExpectDel("quote:AAPL").SetVal(1)

	require.NoError(t, c.Delete(context.Background(), "quote:AAPL"))
	require.NoError(t, mock.ExpectationsWereMet())
}

type earningsPayload struct {
	DaysUntil int `json:"daysUntil"`
}

func TestGetSetJSON_RoundTrips(t *testing.T) {
	c, mock := newMockCache("ts")
	mock.ExpectSet("ts:earnings:AAPL", []byte(`{"daysUntil":10}`), 6*time.Hour).SetVal("OK")
	require.NoError(t, SetJSON(context.Background(), c, "earnings:AAPL", earningsPayload{DaysUntil: 10}, 6*time.Hour))
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectGet("ts:earnings:AAPL").SetVal(`{"daysUntil":10}`)
	var out earningsPayload
	found, err := GetJSON(context.Background(), c, "earnings:AAPL", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 10, out.DaysUntil)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJSON_Miss(t *testing.T) {
	c, mock := newMockCache("ts")
	mock.ExpectGet("ts:earnings:ZZZZ").RedisNil()

	var out earningsPayload
	found, err := GetJSON(context.Background(), c, "earnings:ZZZZ", &out)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
