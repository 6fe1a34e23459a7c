package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2pdf/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PDFCache, *miniredis.Miniredis) {
	t.Helper()
	mrs, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mrs.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mrs.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mrs
}

func TestSetAndGet(t *testing.T) {
	c, mrs := newTestCache(t, 5*time.Minute)
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "pdfcache:missing"))

	c.Set(ctx, "pdfcache:k", []byte("%PDF"))
	assert.Equal(t, []byte("%PDF"), c.Get(ctx, "pdfcache:k"))
	assert.Equal(t, 5*time.Minute, mrs.TTL("pdfcache:k"))
}

func TestNew_DefaultTTL(t *testing.T) {
	c, mrs := newTestCache(t, 0)
	c.Set(context.Background(), "k", []byte("pdf"))

	ttl := mrs.TTL("k")
	if ttl < 50*time.Second || ttl > 70*time.Second {
		t.Fatalf("expected default ttl around 1m, got %v", ttl)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *PDFCache
	assert.Nil(t, New(nil, time.Minute))
	c.Set(context.Background(), "k", []byte("x"))
	assert.Nil(t, c.Get(context.Background(), "k"))
}

func TestGet_RedisDownIsAMiss(t *testing.T) {
	c, mrs := newTestCache(t, time.Minute)
	mrs.Close()

	c.Set(context.Background(), "k", []byte("x"))
	assert.Nil(t, c.Get(context.Background(), "k"))
}

func TestKey(t *testing.T) {
	a := []domain.ImageBuffer{{Data: []byte("one")}, {Data: []byte("two")}}
	b := []domain.ImageBuffer{{Data: []byte("two")}, {Data: []byte("one")}}
	split := []domain.ImageBuffer{{Data: []byte("on")}, {Data: []byte("etwo")}}

	k := Key(a, 85, "LETTER", "")
	assert.True(t, strings.HasPrefix(k, "pdfcache:"))
	assert.Equal(t, k, Key(a, 85, "LETTER", ""))
	assert.NotEqual(t, k, Key(b, 85, "LETTER", ""))
	assert.NotEqual(t, k, Key(split, 85, "LETTER", ""))
	assert.NotEqual(t, k, Key(a, 86, "LETTER", ""))
	assert.NotEqual(t, k, Key(a, 85, "A4", ""))
	assert.NotEqual(t, k, Key(a, 85, "LETTER", "landscape"))
}

func TestKey_IgnoresFileNames(t *testing.T) {
	a := []domain.ImageBuffer{{Name: "scan.png", Data: []byte("one")}}
	b := []domain.ImageBuffer{{Name: "renamed.png", Data: []byte("one"), Size: 3}}

	assert.Equal(t, Key(a, 85, "LETTER", ""), Key(b, 85, "LETTER", ""))
}
