package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BerylCAtieno/rfm-workbench/internal/assistant"
	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/rfm"
)

var (
	errNoDataset = errors.New("upload a CSV file first")
	errNoReport  = errors.New("run the RFM analysis first")
	errNoFile    = errors.New("choose a CSV file to upload")
)

// describe maps an error onto an HTTP status, a stable kind and a user-facing message.
func describe(err error) (int, string, string) {
	var (
		parseErr   *dataset.ParseError
		missingErr *rfm.MissingColumnsError
		cellErr    *rfm.CellError
		serviceErr *assistant.ServiceError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("file exceeds the %d byte upload limit", tooLarge.Limit)
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, dataset.ErrUndecodable), errors.Is(err, dataset.ErrEmpty), errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "decode", "Could not read the file: " + err.Error()
	case errors.Is(err, errNoDataset), errors.Is(err, errNoReport):
		return http.StatusConflict, "state", err.Error()
	case errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity, "schema", err.Error()
	case errors.As(err, &cellErr):
		return http.StatusUnprocessableEntity, "data", err.Error()
	case errors.Is(err, assistant.ErrEmptyPrompt), errors.Is(err, assistant.ErrMissingCredential), errors.Is(err, assistant.ErrNoReport):
		return http.StatusBadRequest, "validation", err.Error()
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway, string(serviceErr.Kind), "The AI service returned an error: " + serviceErr.Error()
	}
	return http.StatusInternalServerError, "internal", err.Error()
}

// isWarning reports whether err is a validation problem rather than a failure.
func isWarning(err error) bool {
	_, kind, _ := describe(err)
	return kind == "validation" || kind == "state"
}
