package generator

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StagePricing   Stage = "pricing"
	StageRetail    Stage = "retail"
	StageLogistics Stage = "logistics"
	StageAccounts  Stage = "accounts"
)

var ErrNoReferenceData = errors.New("reference data is empty")

// StageError reports which write of an order group failed. OrderID is zero
// when the retail store never returned one.
type StageError struct {
	Stage   Stage
	OrderID int64
	Err     error
}

func (e *StageError) Error() string {
	if e.OrderID != 0 {
		return fmt.Sprintf("%s stage failed for order %d: %v", e.Stage, e.OrderID, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Orphaned reports whether the order was already committed in the retail
// store when the error happened. The partial group is left as is.
func (e *StageError) Orphaned() bool {
	return e.Stage == StageLogistics || e.Stage == StageAccounts
}
