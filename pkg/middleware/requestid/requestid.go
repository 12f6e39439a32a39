package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

const (
	ginKey    = "request_id"
	maxLength = 128
)

type ctxKey struct{}

// Middleware tags every request with an id. A caller supplied id is kept
// when it is short printable ASCII; anything else is replaced by a UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !acceptable(id) {
			id = uuid.NewString()
		}

		c.Set(ginKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, id))
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// Value returns the id assigned to the gin request.
func Value(c *gin.Context) string {
	return c.GetString(ginKey)
}

// FromContext returns the id carried by a request context.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
