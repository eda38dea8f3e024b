// Package middleware provides HTTP middleware for authenticating requests to
// the schema registry API.
//
// # Overview
//
// AuthMiddleware validates a Bearer token and attaches an auth.AuthContext to
// the request context for downstream handlers.
//
//	am := middleware.NewAuthMiddleware(tokenManager, false)
//	router.Use(am.Handler)
//
// RequireScope, RequireRole, and RequireModulePermission wrap a handler with
// an additional authorization check, to be layered on top of AuthMiddleware:
//
//	router.Handle("/subjects/{subject}", middleware.RequireScope(auth.ScopeVersionWrite)(publishHandler))
//
// # Related Packages
//
//   - pkg/auth: token and scope model
//   - pkg/observability: structured logging and metrics
package middleware
