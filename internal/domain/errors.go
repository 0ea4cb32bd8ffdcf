package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("catalog store unavailable")
	ErrEmptySlug        = errors.New("name does not produce a slug")

	ErrResolution          = errors.New("category resolution failed")
	ErrCategoryNotFound    = fmt.Errorf("%w: category not found", ErrResolution)
	ErrSubcategoryNotFound = fmt.Errorf("%w: subcategory not found", ErrResolution)
)

// ValidationError carries per-field messages from the product form checks.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// Write steps of the product submission.
const (
	StepProduct = "product"
	StepDetails = "details"
	StepImages  = "images"
	StepCommit  = "commit"
)

// StoreWriteError reports which write of a submission failed. The whole
// submission is rolled back when one is returned.
type StoreWriteError struct {
	Step string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed at %s: %v", e.Step, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
