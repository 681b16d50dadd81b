package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
)

var (
	// ErrEmptyPrompt means the user submitted nothing; no request is sent.
	ErrEmptyPrompt = errors.New("please enter a question")
	// ErrMissingCredential means neither the request nor the server supplied an API key.
	ErrMissingCredential = errors.New("a Gemini API key is required")
	// ErrNoReport means a summary was requested before any RFM report was computed.
	ErrNoReport = errors.New("run the RFM analysis before including its summary")
)

// Kind classifies a ServiceError.
type Kind string

const (
	KindAuth      Kind = "auth"
	KindModel     Kind = "model"
	KindQuota     Kind = "quota"
	KindBlocked   Kind = "blocked"
	KindEmpty     Kind = "empty"
	KindTransport Kind = "transport"
)

// ServiceError is any failure of the remote generation call.
type ServiceError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindAuth:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case KindModel:
		return fmt.Sprintf("model %q is not available: %v", e.Model, e.Err)
	case KindQuota:
		return fmt.Sprintf("quota exceeded: %v", e.Err)
	case KindBlocked:
		return fmt.Sprintf("response blocked: %v", e.Err)
	case KindEmpty:
		return "no content generated"
	}
	return fmt.Sprintf("gemini request failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// classify maps a genai error onto a ServiceError.
func classify(model string, err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Kind: kindOf(err), Model: model, Err: err}
}

func kindOf(err error) Kind {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return KindBlocked
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	code, reason, msg := -1, "", ""
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		code, reason, msg = ae.HTTPCode(), ae.Reason(), ae.Error()
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		code, msg = ge.Code, ge.Message
	}

	switch {
	case reason == "API_KEY_INVALID" || strings.Contains(msg, "API key not valid"):
		return KindAuth
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusNotFound:
		return KindModel
	case code == http.StatusTooManyRequests:
		return KindQuota
	}
	return KindTransport
}
