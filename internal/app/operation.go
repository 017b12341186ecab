package app

import (
	"encoding/json"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Operation is the journal entry for one CLI command. It lives in memory
// with ID 0 until a mutating command persists it.
type Operation struct {
	ID         int64
	Name       string
	Parameters string // JSON array of the command arguments
	Status     string
}

// NewOperation creates an in-memory operation that succeeds unless Fail is called.
func NewOperation(name string, args []string) *Operation {
	if args == nil {
		args = []string{}
	}
	params, _ := json.Marshal(args)
	return &Operation{
		Name:       name,
		Parameters: string(params),
		Status:     statusSuccess,
	}
}

// Persisted reports whether the operation has a catalog row.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = statusError
}
