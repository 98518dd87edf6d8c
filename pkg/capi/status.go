package capi

import (
	"errors"
	"fmt"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Status is the ov_status_e code every bridge operation returns.
type Status int32

const (
	StatusOK                  Status = 0
	StatusGeneralError        Status = -1
	StatusNotImplemented      Status = -2
	StatusNetworkNotLoaded    Status = -3
	StatusParameterMismatch   Status = -4
	StatusNotFound            Status = -5
	StatusOutOfBounds         Status = -6
	StatusUnexpected          Status = -7
	StatusRequestBusy         Status = -8
	StatusResultNotReady      Status = -9
	StatusNotAllocated        Status = -10
	StatusInferNotStarted     Status = -11
	StatusNetworkNotRead      Status = -12
	StatusInferCancelled      Status = -13
	StatusInvalidCParam       Status = -14
	StatusUnknownCError       Status = -15
	StatusNotImplementCMethod Status = -16
	StatusUnknownException    Status = -17
)

var statusNames = map[Status]string{
	StatusOK:                  "OK",
	StatusGeneralError:        "GENERAL_ERROR",
	StatusNotImplemented:      "NOT_IMPLEMENTED",
	StatusNetworkNotLoaded:    "NETWORK_NOT_LOADED",
	StatusParameterMismatch:   "PARAMETER_MISMATCH",
	StatusNotFound:            "NOT_FOUND",
	StatusOutOfBounds:         "OUT_OF_BOUNDS",
	StatusUnexpected:          "UNEXPECTED",
	StatusRequestBusy:         "REQUEST_BUSY",
	StatusResultNotReady:      "RESULT_NOT_READY",
	StatusNotAllocated:        "NOT_ALLOCATED",
	StatusInferNotStarted:     "INFER_NOT_STARTED",
	StatusNetworkNotRead:      "NETWORK_NOT_READ",
	StatusInferCancelled:      "INFER_CANCELLED",
	StatusInvalidCParam:       "INVALID_C_PARAM",
	StatusUnknownCError:       "UNKNOWN_C_ERROR",
	StatusNotImplementCMethod: "NOT_IMPLEMENT_C_METHOD",
	StatusUnknownException:    "UNKNOW_EXCEPTION",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// StatusError is an error that carries its own status code. Errors of this
// type keep their status at the boundary instead of collapsing to
// StatusGeneralError.
type StatusError struct {
	Status Status
	Msg    string
}

func (e *StatusError) Error() string {
	return e.Status.String() + ": " + e.Msg
}

func statusErrorf(s Status, format string, args ...any) error {
	return &StatusError{Status: s, Msg: fmt.Sprintf(format, args...)}
}

// statusOf maps an error returned by an operation body to a status.
func statusOf(err error) Status {
	var se *StatusError
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &se):
		return se.Status
	case errors.Is(err, genai.ErrBusy):
		return StatusRequestBusy
	default:
		return StatusGeneralError
	}
}
