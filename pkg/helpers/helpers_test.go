package helpers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	tok, exp, err := m.GenerateAccessToken("reader@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", claims.Email)
}

func TestJWT_Rejections(t *testing.T) {
	issued := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour).WithClock(func() time.Time { return issued })
	tok, _, err := m.GenerateAccessToken("reader@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		mgr   *JWTManager
		token string
	}{
		{"empty", m, ""},
		{"garbage", m, "not-a-token"},
		{"wrong secret", NewJWTManager("other", time.Hour).WithClock(func() time.Time { return issued }), tok},
		{"expired", NewJWTManager("secret", time.Hour).WithClock(func() time.Time { return issued.Add(2 * time.Hour) }), tok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.ParseAccessToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))
	assert.Empty(t, BearerToken(""))
}

func TestObjectPath(t *testing.T) {
	p := ObjectPath("articles", "Writer@Example.com", "Photo.JPG")
	assert.True(t, strings.HasPrefix(p, "articles/writer_at_example.com/"), p)
	assert.True(t, strings.HasSuffix(p, ".jpg"), p)
	assert.NotEqual(t, p, ObjectPath("articles", "Writer@Example.com", "Photo.JPG"))
}

func TestRedisJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var got payload
	found, err := RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, RedisSetJSON(ctx, rdb, "k", payload{Name: "x"}, time.Minute))
	found, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", got.Name)

	require.NoError(t, RedisDel(ctx, rdb, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, RetryCount(nil))
	assert.Equal(t, 0, RetryCount(amqp.Table{HeaderRetryCount: "3"}))
	assert.Equal(t, 2, RetryCount(amqp.Table{HeaderRetryCount: int32(2)}))
	assert.Equal(t, 5, RetryCount(amqp.Table{HeaderRetryCount: int64(5)}))
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Second, RetryDelay(0))
	assert.Equal(t, time.Second, RetryDelay(1))
	assert.Equal(t, 4*time.Second, RetryDelay(3))
	assert.Equal(t, time.Minute, RetryDelay(7))
	assert.Equal(t, time.Minute, RetryDelay(40))
}

func TestRedelivery(t *testing.T) {
	d := amqp.Delivery{
		Headers:     amqp.Table{"trace": "abc", HeaderRetryCount: int32(1)},
		ContentType: "application/json",
		MessageId:   "m-1",
		Body:        []byte(`{"entry_id":"e1"}`),
	}
	p := Redelivery(d, 2)
	assert.Equal(t, d.Body, p.Body)
	assert.Equal(t, "m-1", p.MessageId)
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.Equal(t, "abc", p.Headers["trace"])
	assert.Equal(t, 2, RetryCount(p.Headers))
	assert.Equal(t, int32(1), d.Headers[HeaderRetryCount], "source headers untouched")
}
