package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrorRecordNotFound  = errors.New("record not found")
	ErrInvalidForeignKey = errors.New("invalid foreign key")
	ErrInvalidId         = errors.New("invalid id")
)

// FieldViolation is one failed constraint of a request payload.
type FieldViolation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint of one request.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, tag, message string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Tag: tag, Message: message}}}
}

// IsForeignKeyViolation recognises FK failures from the translated gorm error,
// the MySQL driver (1451/1452) and SQLite.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, ErrInvalidForeignKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451 || myErr.Number == 1452
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// TranslateStoreError maps FK violations to ErrInvalidForeignKey and leaves other errors as they are.
func TranslateStoreError(err error) error {
	if err != nil && IsForeignKeyViolation(err) && !errors.Is(err, ErrInvalidForeignKey) {
		return fmt.Errorf("%w: %v", ErrInvalidForeignKey, err)
	}
	return err
}
