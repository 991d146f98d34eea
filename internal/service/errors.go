// Package service holds the business rules that sit between HTTP
// handlers and the repositories: inventory validation, the order and
// stock transaction, payments, analytics, permissions and QR rendering.
package service

// ValidationError reports caller input that fails a business rule.  The
// message is safe to return to clients verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
