// Package iam (Identity and Access Management) authenticates callers and gates
// routes by role.
//
// # Overview
//
//   - iam/user         User entity, repository port and store adapters
//   - iam/auth         Token service, auth flows, HTTP handlers and middleware
//   - iam/iamcontainer Wiring of the above into a ready-to-mount module
//
// # Authentication Methods
//
// Four entry paths produce the same access/refresh token pair:
//
//  1. Password login by username or email.
//  2. Refresh: a refresh token buys a new access token. The refresh token
//     itself is not rotated.
//  3. Magic link: a 15 minute token mailed to the user, exchanged at
//     /api/auth/verify-magic-link. Replay inside the window is accepted.
//  4. Google: a verified ID token logs in an existing account (linking the
//     Google subject on first use) or creates a passwordless one.
//
// Every token carries a purpose claim (access, refresh or magic_link) and is
// rejected wherever another purpose is expected.
//
// # Middleware
//
// Protected routes chain Authenticate and Authorize:
//
//	app.Get("/api/users/admin", mw.Authenticate(), mw.Authorize(kernel.RoleAdmin), h)
//
// Authenticate reads "Authorization: Bearer <token>" and stores a
// *kernel.AuthContext in the request locals under "auth".
//
// # Errors
//
// Each sub-domain owns an errx registry. The gate codes live here:
// NO_TOKEN, TOKEN_EXPIRED, INVALID_TOKEN_FORMAT, TOKEN_NOT_ACTIVE,
// USER_NOT_AUTHENTICATED, ROLE_NOT_FOUND and INSUFFICIENT_PERMISSIONS.
package iam
