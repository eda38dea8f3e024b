// Package validation provides semantic validation for protobuf schema files.
//
// # Overview
//
// This package performs deep semantic validation beyond syntax checking, enforcing
// proto conventions, detecting structural issues, and normalizing schemas for storage.
//
// # Validation Checks
//
// Naming Conventions:
//   - Messages: PascalCase (User, OrderRequest)
//   - Fields: snake_case (user_id, created_at)
//   - Enums: PascalCase (Status, ErrorCode)
//   - Enum values: UPPER_SNAKE_CASE (STATUS_ACTIVE, ERROR_NOT_FOUND)
//   - Services: PascalCase (UserService, OrderManagement)
//   - RPC methods: PascalCase (GetUser, ListOrders)
//
// Structural Rules:
//   - Field number conflicts
//   - Reserved range violations (19000-19999)
//
// Circular dependencies, unused imports and missing required fields are not
// checked: the unused-import pass reports nothing.
//
// # Usage Example
//
// Validate a parsed proto file:
//
//	validator := validation.NewValidator(validation.DefaultValidationConfig())
//
//	result := validator.Validate(ast) // ast is a *protobuf.RootNode
//	for _, err := range result.Errors {
//		fmt.Printf("[%s] %s: %s\n", err.Severity, err.Location, err.Message)
//	}
//
// Normalize schema:
//
//	normalizer := validation.NewNormalizer(nil) // nil selects the defaults
//	normalized, err := normalizer.NormalizeString(protoContent)
//	// Sorted imports, sorted fields, consistent whitespace
//
// # Related Packages
//
//   - pkg/compatibility: Breaking change detection
//   - pkg/registry/fingerprint: canonicalization for dedup hashing
package validation
