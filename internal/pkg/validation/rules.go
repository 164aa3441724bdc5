package validation

import (
	"regexp"
	"strconv"

	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Institute code pattern - lowercase slug
	InstitutePattern = `^[a-z][a-z0-9\-]{1,63}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Institute *regexp.Regexp
}{
	Institute: regexp.MustCompile(InstitutePattern),
}

// ParseID parses a canonical id token (positive base-10 integer). A malformed
// token is a validation error, distinct from "not found".
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidID
	}
	return id, nil
}

// ValidateID checks an already-numeric identifier for the canonical range.
func ValidateID(id int64) error {
	if id <= 0 {
		return apperrors.ErrInvalidID
	}
	return nil
}

// ValidateInstitute checks an institute code against the canonical slug format.
func ValidateInstitute(code string) error {
	if !CompiledPatterns.Institute.MatchString(code) {
		return apperrors.NewValidationError("invalid institute code")
	}
	return nil
}
