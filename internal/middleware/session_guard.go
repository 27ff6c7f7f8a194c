package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/session"
	"almacen-front/pkg/utils"
)

// LoginPath is where the front panel is sent when the session is gone.
const LoginPath = "/login"

// SessionGuard protects screen routes: without a valid operator session
// the request is answered with a redirect hint instead of reaching the
// backend. Expired tokens are logged out on the spot through the store's
// usual path.
func SessionGuard(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		store.ExpireIfStale()

		if !store.Valid() {
			utils.RedirectResponse(c, http.StatusUnauthorized, "session required", LoginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
