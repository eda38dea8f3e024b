// Package auth provides user authentication and API token management for the schema registry.
//
// # Overview
//
// This package defines the user, organization, API token, scope, role and permission
// types and generates and hashes API tokens. TokenManager has no token store attached:
// token lookup, revocation, listing and cleanup return "not implemented" errors, and
// AuthContext.HasRole and HasPermission always return false.
//
// # Key Components
//
// Users: human and bot accounts
//
//	user := &auth.User{
//		Username: "alice",
//		Email:    "alice@example.com",
//		IsBot:    false,
//	}
//
// API Tokens: Secure token generation with prefix display, scopes, and expiration
//
//	expires := time.Now().Add(90 * 24 * time.Hour)
//	token := &auth.APIToken{
//		Name:      "CI/CD Pipeline",
//		UserID:    user.ID,
//		Scopes:    []auth.Scope{auth.ScopeModuleRead, auth.ScopeVersionWrite},
//		ExpiresAt: &expires,
//	}
//	// Token format: spoke_[base64url(32 random bytes)]
//	// Stored as SHA256 hash for security
//
// Scopes: Fine-grained API permissions
//
//	ScopeModuleRead     - Read module metadata
//	ScopeModuleWrite    - Create/update modules
//	ScopeVersionWrite   - Push new versions
//	ScopeTokenCreate    - Create API tokens
//	ScopeOrgWrite       - Manage organization
//	ScopeAll            - Full access
//
// Role-Based Permissions: Organization-level roles
//
//	RoleAdmin     - Full organization access
//	RoleDeveloper - Create/update modules
//	RoleViewer    - Read-only access
//
// # Authentication Flow
//
// Token Generation:
//
//	generator := auth.NewTokenGenerator()
//	tokenString, hash, prefix, err := generator.GenerateToken()
//	// tokenString: spoke_xxx (give to user, display once)
//	// hash: hex SHA256(tokenString)
//	// prefix: spoke_ plus the first 8 encoded characters, for display
//
// Token Validation:
//
//	manager := auth.NewTokenManager()
//	token, err := manager.ValidateToken(tokenString)
//	if err != nil {
//		return errors.New("invalid token")
//	}
//	// Check scopes
//	authCtx := &auth.AuthContext{Token: token, Scopes: token.Scopes}
//	if !authCtx.HasScope(auth.ScopeModuleWrite) {
//		return errors.New("insufficient permissions")
//	}
//
// ValidateToken checks the format and hashes the token; with no token store
// attached it then returns a "not implemented: token lookup" error for every token.
//
// # Authorization Context
//
// AuthContext: Request-scoped authentication state
//
//	type AuthContext struct {
//		User            *User
//		Organization    *Organization
//		Token           *APIToken
//		Scopes          []Scope
//		PermissionCheck PermissionChecker
//	}
//
// Middleware injects AuthContext into request:
//
//	authCtx := middleware.GetAuthContext(r)
//	if authCtx == nil || authCtx.User == nil {
//		http.Error(w, "Unauthorized", http.StatusUnauthorized)
//		return
//	}
//
// # Module-Level Permissions
//
// Beyond org-level roles, users can have per-module permissions:
//
//	permission := &auth.ModulePermission{
//		UserID:     &user.ID,
//		ModuleID:   moduleID,
//		Permission: auth.PermissionWrite,
//	}
//	// Permission levels: Read, Write, Delete, Admin
//
// Check module access (always false; no permission store is consulted):
//
//	canWrite := authCtx.HasPermission(moduleID, auth.PermissionWrite)
//
// # Security Audit Logging
//
// Callers log authentication events through the observability logger:
//
//	logger.Info("authentication", "user_id", user.ID, "token_id", token.ID,
//		"ip", r.RemoteAddr, "user_agent", r.UserAgent(), "success", true)
//
// # Token Lifecycle Management
//
// Create token:
//
//	expires := time.Now().Add(365 * 24 * time.Hour)
//	apiToken, tokenString, err := manager.CreateToken(user.ID, "Deploy Bot", "",
//		[]auth.Scope{auth.ScopeVersionWrite}, &expires)
//	// apiToken is built in memory only; it is not persisted
//
// Revoke token:
//
//	err := manager.RevokeToken(tokenID, revokedBy, "rotated")
//
// List user's tokens:
//
//	tokens, err := manager.ListUserTokens(userID)
//	for _, token := range tokens {
//		fmt.Printf("%s: %s (expires %v)\n",
//			token.TokenPrefix, token.Name, token.ExpiresAt)
//	}
//
// Cleanup expired tokens:
//
//	deleted, err := manager.CleanupExpiredTokens()
//	fmt.Printf("Deleted %d expired tokens\n", deleted)
//
// RevokeToken, ListUserTokens and CleanupExpiredTokens have no store to act on
// and always return a "not implemented" error.
//
// # Bot Accounts
//
// Bot accounts are users with IsBot=true, typically for automation:
//
//	bot := &auth.User{
//		Username: "github-actions",
//		Email:    "bot@example.com",
//		IsBot:    true,
//	}
//	// IsBot only marks the account; this package has no password login
//
// # Related Packages
//
//   - pkg/middleware: HTTP authentication middleware
//   - pkg/observability: structured logging and metrics
package auth
