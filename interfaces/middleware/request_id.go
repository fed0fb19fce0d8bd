package middleware

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const HeaderRequestID = "X-Request-ID"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func newRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RequestID reuses an incoming X-Request-ID or mints a ULID, and puts it on
// the request context for logger.FromContext.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = newRequestID()
		}
		ctx.Request = ctx.Request.WithContext(logger.WithRequestID(ctx.Request.Context(), id))
		ctx.Header(HeaderRequestID, id)
		ctx.Next()
	}
}
