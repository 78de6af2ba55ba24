// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for the unsafe visit writes.
// The middleware validates the header, stashes the key in the context, and
// asks a pluggable lookup whether the same (user, refuge, key) write already
// completed. Detected replays are flagged for the handler, which serves the
// stored outcome instead of writing again; persistence of completed writes is
// the handler's job, not this middleware's.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's retry key.
// Clients keep the value stable across retries of one semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashing idempotency state; read through the accessors below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: a stored completed write exists
	ctxKeyRateBypass = "rate.bypass" // bool: skip rate limiting for replays
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a completed write. Handlers
// seeing true serve the persisted result without running the write again.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. MaxLen values <= 0 default
// to 200; a nil Pattern uses a conservative token alphabet. TTL enforcement
// belongs to the lookup, not here.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a still-valid completed write exists for
// (userID, refugeID, key) at now. Lookup errors must not block processing;
// the caller treats them as "no replay".
type IdempotencyLookup func(ctx context.Context, userID, refugeID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes the key, and flags replays detected by lookup. Requests without the
// header pass through untouched; a malformed key gets a 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := userIDFromCtx(c)
			refugeID := c.Param("id") // visit writes are /refuges/:id/visits/:date
			if exists, _ := lookup(c.Request.Context(), uid, refugeID, key, time.Now().UTC()); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx mirrors the handlers' identity resolution: context value,
// then the X-User-ID header, then the development fallback.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := c.GetHeader("X-User-ID"); h != "" {
			return h
		}
	}
	return "demo-user"
}
