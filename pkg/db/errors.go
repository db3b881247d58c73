package db

import "strings"

// IsUniqueViolation reports whether the error is a unique constraint
// violation. Callers that race on a natural key (the policy singleton, a
// month's (year, month) pair) pass the constraint name to distinguish their
// own index from unrelated collisions.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
