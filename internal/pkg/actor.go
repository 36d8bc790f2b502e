package pkg

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
)

// ActorHeader carries the login of the authenticated caller. It is set by the
// session layer in front of this service.
const ActorHeader = "X-Actor-Login"

// RequireActor returns the caller's login, or sends a 403 response and
// returns false when the header is absent.
//
//	actor, ok := pkg.RequireActor(c)
//	if !ok { return }
func RequireActor(c *gin.Context) (string, bool) {
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" {
		Error(c, domain.NewAppError(domain.CodeForbidden, "sign in required", nil))
		return "", false
	}
	return actor, true
}
