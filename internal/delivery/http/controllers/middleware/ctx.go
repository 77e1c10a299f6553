package middleware

import (
	"ChatHive/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	IdentityCtx    = "identity"
	ClientRolesCtx = "client_roles"
)

func SetIdentity(c *gin.Context, ident *models.Identity) {
	c.Set(IdentityCtx, ident)
	c.Set(ClientRolesCtx, ident.Roles)
}

// Identity returns the authenticated principal of the request, or nil when the
// request proceeded unauthenticated.
func Identity(c *gin.Context) *models.Identity {
	raw, exists := c.Get(IdentityCtx)
	if !exists {
		return nil
	}
	ident, ok := raw.(*models.Identity)
	if !ok {
		return nil
	}
	return ident
}
