package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/playpark/internal/httperr"
)

const (
	IdempotencyKeyHeader   = "X-Idempotency-Key"
	IdempotentReplayHeader = "X-Idempotent-Replay"

	idempotencyKeyPrefix     = "playpark:idempotency:"
	idempotencyProcessingTTL = 60 * time.Second
)

// RedisClient is the subset of *redis.Client the middleware uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type idempotencyRecord struct {
	Status       string `json:"status"`
	RequestHash  string `json:"request_hash"`
	ResponseCode int    `json:"response_code,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
}

const (
	recordProcessing = "processing"
	recordCompleted  = "completed"
)

// Idempotency replays the stored response when a write is retried with the
// same X-Idempotency-Key. Requests without the header, or with no redis
// configured, pass straight through. Redis failures fail open. Only
// outcomes a retry cannot change are stored: server errors, 402 and
// errors flagged retryable release the key instead.
func Idempotency(rdb RedisClient, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if rdb == nil || key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + key
		hash := requestHash(c, body)

		existing, err := loadRecord(ctx, rdb, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing == nil {
			claimed, err := storeRecord(ctx, rdb, redisKey, idempotencyRecord{
				Status:      recordProcessing,
				RequestHash: hash,
			}, idempotencyProcessingTTL, true)
			if err != nil {
				c.Next()
				return
			}
			if !claimed {
				existing, _ = loadRecord(ctx, rdb, redisKey)
				if existing == nil {
					// Lost the claim and the winner's record is already gone.
					existing = &idempotencyRecord{Status: recordProcessing, RequestHash: hash}
				}
			}
		}

		if existing != nil {
			replay(c, existing, hash)
			return
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		status := rw.Status()
		if !replayable(status, rw.body.Bytes()) {
			rdb.Del(ctx, redisKey)
			return
		}

		_, _ = storeRecord(ctx, rdb, redisKey, idempotencyRecord{
			Status:       recordCompleted,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: rw.body.String(),
		}, ttl, false)
	}
}

func replayable(status int, body []byte) bool {
	switch {
	case status >= http.StatusInternalServerError:
		return false
	case status == http.StatusPaymentRequired:
		return false
	case status >= http.StatusBadRequest:
		var e httperr.HTTPError
		if err := json.Unmarshal(body, &e); err == nil && e.Retryable {
			return false
		}
	}
	return true
}

func replay(c *gin.Context, rec *idempotencyRecord, hash string) {
	switch {
	case rec.RequestHash != hash:
		httperr.Write(c, http.StatusUnprocessableEntity, "idempotency_key_reused", "Idempotency key was used with a different request.")
		c.Abort()
	case rec.Status != recordCompleted:
		httperr.Write(c, http.StatusConflict, "request_in_progress", "A request with this idempotency key is in progress.")
		c.Abort()
	default:
		c.Header(IdempotentReplayHeader, "true")
		c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
		c.Abort()
	}
}

// requestHash binds the key to method, path, actor and body.
func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write([]byte(strconv.FormatUint(uint64(c.GetUint(ContextUserID)), 10)))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func loadRecord(ctx context.Context, rdb RedisClient, key string) (*idempotencyRecord, error) {
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func storeRecord(
	ctx context.Context,
	rdb RedisClient,
	key string,
	rec idempotencyRecord,
	ttl time.Duration,
	onlyIfAbsent bool,
) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	if onlyIfAbsent {
		return rdb.SetNX(ctx, key, string(data), ttl).Result()
	}
	return true, rdb.Set(ctx, key, string(data), ttl).Err()
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
