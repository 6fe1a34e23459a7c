// Package cache stores finished PDFs in Redis so identical uploads are not
// composed twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"img2pdf/internal/domain"
	"img2pdf/internal/infra/logging"
)

const keyPrefix = "pdfcache:"

// opTimeout bounds every Redis round trip.
const opTimeout = time.Second

// PDFCache is a Redis-backed cache of compressed documents. A nil *PDFCache
// is valid and caches nothing.
type PDFCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a cache using rdb. ttl <= 0 defaults to one minute.
func New(rdb *redis.Client, ttl time.Duration) *PDFCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PDFCache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for a request from everything that affects the
// output: quality, page settings and every image in order.
func Key(images []domain.ImageBuffer, q domain.Quality, paper, orientation string) string {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(q))
	h.Write(n[:])
	h.Write([]byte(paper))
	h.Write([]byte{0})
	h.Write([]byte(orientation))
	h.Write([]byte{0})
	for _, img := range images {
		binary.BigEndian.PutUint64(n[:], uint64(len(img.Data)))
		h.Write(n[:])
		h.Write(img.Data)
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached document for key, or nil on a miss or error.
func (c *PDFCache) Get(ctx context.Context, key string) []byte {
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil
	}
	logging.Info("PDF cache hit", "key", key)
	return data
}

// Set stores data under key. Failures are logged and otherwise ignored.
func (c *PDFCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}
