package kernel

import "slices"

// ============================================================================
// Context Types
// ============================================================================

// AuthContext is the authenticated principal attached to a request after its
// bearer token has been verified. It lives only for the request.
type AuthContext struct {
	UserID UserID `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
}

// IsValid reports whether the context carries a subject.
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty()
}

// HasRole reports whether the principal's role is one of roles.
func (ac *AuthContext) HasRole(roles ...Role) bool {
	if ac == nil || ac.Role.IsEmpty() {
		return false
	}
	return slices.Contains(roles, ac.Role)
}

// IsAdmin reports whether the principal has the admin role.
func (ac *AuthContext) IsAdmin() bool {
	return ac.HasRole(RoleAdmin)
}

// ============================================================================
// Context Keys
// ============================================================================

type ContextKey string

const (
	// AuthContextKey is the Fiber locals key holding *AuthContext.
	AuthContextKey ContextKey = "auth"

	// RequestIDKey is the context key for the request id.
	RequestIDKey ContextKey = "request_id"
)
