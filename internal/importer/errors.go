package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carrier-rates/backend/internal/models"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrRateCardNotFound = errors.New("rate card not found")
	// ErrNoValidRows is returned by a commit in which every row was skipped.
	ErrNoValidRows = errors.New("no valid rows to import")
	// ErrInvalidTemplate wraps problems with a template definition.
	ErrInvalidTemplate = errors.New("invalid template")
	ErrNoHeaders       = errors.New("at least one header is required")
)

// ValidationError reports a structural validation failure. No rows were
// processed.
type ValidationError struct {
	Result *models.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import validation failed: %s", strings.Join(e.Result.Errors, "; "))
}
