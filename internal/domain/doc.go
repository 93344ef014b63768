// Package domain defines the core business types for the trainee backend.
//
// Types in this package are pure value objects with no behavior, no database
// dependencies, and no HTTP concerns. They are the shared language between
// handlers, services, and repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB/validate tags are allowed (they're metadata, not behavior)
//   - Conversion and parsing helpers are allowed (pure functions on the type)
package domain
