package models

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("requested resource not found")
var ErrInvalidInput = errors.New("invalid input")

// ErrGeocodeNotFound is returned when a place name cannot be resolved,
// including when every retry against the geocoding provider failed.
var ErrGeocodeNotFound = errors.New("location not found")
var ErrNoRoute = errors.New("no route between locations")
var ErrInvalidLocation = errors.New("location is outside the routable network")
var ErrProvider = errors.New("provider error")
var ErrNetwork = errors.New("network error")
var ErrTimeout = errors.New("provider request timed out")

// ErrMissingCredential is recovered by the fuel price client and never
// reaches API callers.
var ErrMissingCredential = errors.New("provider credential not configured")
var ErrUnknownVehicle = errors.New("unknown vehicle configuration")
var ErrStaleRequest = errors.New("request superseded by a newer one")
var ErrNoPlan = errors.New("no trip plan to confirm")

// ProviderError reports a non-2xx status or an unreadable body from an
// external provider.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrProvider }

// Plan steps reported by PlanError.
const (
	StepVehicle  = "vehicle"
	StepGeocode  = "geocode"
	StepRoute    = "route"
	StepValidate = "validate"
)

// PlanError carries the step at which trip planning failed together with
// the underlying error kind.
type PlanError struct {
	Step  string
	Field string // "origin" or "destination" for geocode failures
	Err   error
}

func (e *PlanError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("plan trip: %s %s: %v", e.Step, e.Field, e.Err)
	}
	return fmt.Sprintf("plan trip: %s: %v", e.Step, e.Err)
}

func (e *PlanError) Unwrap() error { return e.Err }

// Message is the human readable text shown inline by the UI.
func (e *PlanError) Message() string {
	switch {
	case errors.Is(e.Err, ErrGeocodeNotFound):
		if e.Field != "" {
			return fmt.Sprintf("could not find the %s location", e.Field)
		}
		return "could not find one of the locations"
	case errors.Is(e.Err, ErrNoRoute):
		return "could not find a route between these locations"
	case errors.Is(e.Err, ErrInvalidLocation):
		return "one of the locations is not reachable by road"
	case errors.Is(e.Err, ErrTimeout):
		return fmt.Sprintf("the %s service took too long to respond", e.Step)
	case errors.Is(e.Err, ErrUnknownVehicle):
		return "the selected vehicle configuration is not supported"
	case errors.Is(e.Err, ErrInvalidInput):
		if e.Step == StepVehicle {
			return "the vehicle configuration is invalid"
		}
		return "origin and destination are required"
	default:
		return fmt.Sprintf("the %s service is unavailable, please try again", e.Step)
	}
}

// Error kinds exposed to API clients.
const (
	KindNotFound          = "NotFound"
	KindNoRoute           = "NoRoute"
	KindInvalidLocation   = "InvalidLocation"
	KindProviderError     = "ProviderError"
	KindNetworkError      = "NetworkError"
	KindTimeout           = "Timeout"
	KindMissingCredential = "MissingCredential"
	KindUnknownVehicle    = "UnknownVehicle"
	KindInvalidInput      = "InvalidInput"
	KindStale             = "Stale"
	KindNoPlan            = "NoPlan"
	KindInternal          = "Internal"
)

// Kind maps an error to its stable API kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGeocodeNotFound), errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoRoute):
		return KindNoRoute
	case errors.Is(err, ErrInvalidLocation):
		return KindInvalidLocation
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetworkError
	case errors.Is(err, ErrProvider):
		return KindProviderError
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrUnknownVehicle):
		return KindUnknownVehicle
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrStaleRequest):
		return KindStale
	case errors.Is(err, ErrNoPlan):
		return KindNoPlan
	default:
		return KindInternal
	}
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Step    string `json:"step,omitempty"`
}

// NewErrorResponse builds the response body for err, using the plan step
// message when err is a PlanError.
func NewErrorResponse(err error) ErrorResponse {
	var perr *PlanError
	if errors.As(err, &perr) {
		return ErrorResponse{Message: perr.Message(), Kind: Kind(perr.Err), Step: perr.Step}
	}
	kind := Kind(err)
	if kind == KindInternal {
		return ErrorResponse{Message: "internal server error", Kind: kind}
	}
	return ErrorResponse{Message: err.Error(), Kind: kind}
}

// HTTPStatus maps an error kind to the status code returned by the API.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case KindInvalidInput, KindUnknownVehicle:
		return http.StatusBadRequest
	case KindNotFound, KindNoPlan:
		return http.StatusNotFound
	case KindNoRoute, KindInvalidLocation:
		return http.StatusUnprocessableEntity
	case KindStale:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindProviderError, KindNetworkError, KindMissingCredential:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
