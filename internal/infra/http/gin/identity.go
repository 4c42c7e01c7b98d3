package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const principalContextKey = "courtside.principal"

// principal is the caller's identity as asserted by the edge proxy. A full
// session layer is out of scope for this service; the gateway in front of it
// authenticates members and forwards the result in headers.
type principal struct {
	MemberID string
	Admin    bool
}

func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Member-ID"))
		admin, _ := strconv.ParseBool(c.GetHeader("X-Admin"))
		if id != "" {
			c.Set(principalContextKey, principal{MemberID: id, Admin: admin})
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return principal{}, false
	}
	p, ok := v.(principal)
	return p, ok
}

func requireMember(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok || p.MemberID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member identity required"})
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	p, ok := requireMember(c)
	if !ok {
		return principal{}, false
	}
	if !p.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
		return principal{}, false
	}
	return p, true
}
