package services

import "fmt"

// ValidationError reports the first violated input field. The operation that
// raised it performs no write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced record that does not exist or does not
// belong to the acting account. The two cases are deliberately not
// distinguishable to the caller.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ConflictError reports a duplicate write outside the upsert path, e.g. a
// second offer row racing on the (account, supplier, product) key.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
