// Package httpkit provides the shared HTTP middleware, response helpers, and
// caller identity abstraction used by every module's handlers.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated caller as handlers see it, decoupled from
// the web framework's context type.
type Identity interface {
	// UserID is the authenticated user's id.
	UserID() uuid.UUID
	// Roles lists the caller's roles.
	Roles() []string
	// HasRole reports whether the caller holds the given role.
	HasRole(role string) bool
	// IsAuthenticated reports whether a user is logged in at all.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity reads the caller identity the auth middleware stored on the
// request. Without one it returns an unauthenticated identity, letting
// public endpoints serve both cases.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var roleList []string
	if rolesOK {
		roleList, _ = roles.([]string)
	}

	return &identity{
		userID:        uid,
		roles:         roleList,
		authenticated: true,
	}
}

// MustGetIdentity is GetIdentity for protected endpoints: an unauthenticated
// caller gets a 401 and the handler receives nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
