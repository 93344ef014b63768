// Package trainee implements the trainee service consumed by the HTTP layer.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly. Absence is reported as a nil result
// (FindByID, Update) or false (Delete) so callers decide how to surface it.
package trainee
