package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/ierr"
)

// RelayResponse is returned to callers that sent an event as a request.
type RelayResponse struct {
	Recipients int `json:"recipients"`
}

func connectionFromContext(ctx context.Context) (*broadcaster.Connection, error) {
	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return nil, ierr.New(ierr.ErrorCodeInternal, errors.New("connection not found in context"))
	}

	return connection, nil
}

func requireString(field string, value string) error {
	if value == "" {
		return ierr.New(ierr.ErrorCodeMalformedEvent, errors.New(field+" is required"))
	}

	return nil
}

// requireValue rejects absent fields. An explicit JSON null counts as present.
func requireValue(field string, value json.RawMessage) error {
	if len(value) == 0 {
		return ierr.New(ierr.ErrorCodeMalformedEvent, errors.New(field+" is required"))
	}

	return nil
}
