package editor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
)

// Duplicate clones a door into each of the target door numbers in one
// logical operation. The server holds the transaction boundary: either
// every target door is created, each seeded with copies of the
// source's line items, or none are. Targets must be positive and
// unique.
func Duplicate(ctx context.Context, api BidAPI, sourceDoorID uuid.UUID, targetNumbers []int) (*DuplicateResult, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid api is required")
	}
	if sourceDoorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source door id is required")
	}
	if len(targetNumbers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one target door number is required")
	}

	seen := make(map[int]struct{}, len(targetNumbers))
	for _, n := range targetNumbers {
		if n <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("target door number %d must be a positive integer", n))
		}
		if _, dup := seen[n]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("target door number %d is repeated", n))
		}
		seen[n] = struct{}{}
	}

	result, err := api.DuplicateDoor(ctx, sourceDoorID, targetNumbers)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "duplicate returned no result")
	}
	return result, nil
}
