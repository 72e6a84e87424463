package dev

import (
	"time"

	"github.com/nu7hatch/gouuid"
)

// Error is a support record for an unexpected failure. The reference is
// what gets handed to the caller; the rest stays in the logs.
type Error struct {
	Reference string                 `json:"reference"`
	Time      time.Time              `json:"time"`
	Component string                 `json:"component"`
	Error     string                 `json:"error"`
	Extra     map[string]interface{} `json:"extra"`
}

func (e Error) Slug() string {
	return e.Reference
}

func NewError(component string, err error, extra map[string]interface{}) Error {
	reference := ""
	if u, uuidErr := uuid.NewV4(); uuidErr == nil {
		reference = u.String()
	}

	return Error{
		Reference: reference,
		Time:      time.Now(),
		Component: component,
		Error:     err.Error(),
		Extra:     extra,
	}
}
