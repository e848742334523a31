package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/common"
	"github.com/Veraticus/gross-to-net/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrAmbiguousID    = errors.New("dataset id prefix is ambiguous")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDataset checks a dataset before it is written.
func validateDataset(ds *model.Dataset) error {
	if ds == nil {
		return fmt.Errorf("%w: dataset", ErrNilParameter)
	}
	if strings.TrimSpace(ds.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDataset)
	}
	if len(ds.Rows) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, common.ErrEmptyDataset)
	}
	if ds.CorrectedCount < 0 {
		return fmt.Errorf("%w: negative correction count", ErrInvalidDataset)
	}
	return nil
}
