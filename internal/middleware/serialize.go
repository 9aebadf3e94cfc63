package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// SerializeWrites runs mutating requests one at a time so the engine keeps a
// single writer. Reads are not blocked.
func SerializeWrites() gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	}
}
