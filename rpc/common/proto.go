package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Invocation (request)
// --------------------------------------------------------------------------

// Invocation is the request document published by a client.
// Args and Kwargs are opaque to the protocol, they only have to be representable
// by the serializer in use.
type Invocation struct {
	Method string `json:"method"`
	Args   Args   `json:"args"`
	Kwargs Kwargs `json:"kwargs"`
}

// NewInvocation creates a new Invocation. Nil args and kwargs are replaced by
// empty values so the encoded document always carries all three fields.
func NewInvocation(method string, args []any, kwargs map[string]any) *Invocation {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return &Invocation{
		Method: method,
		Args:   args,
		Kwargs: kwargs,
	}
}

// --------------------------------------------------------------------------
// Response Envelope
// --------------------------------------------------------------------------

// Response is the envelope returned by the server.
// Data is only meaningful if Status is StatusSuccess, Error only if Status is StatusError.
type Response struct {
	Status Status `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewSuccessResponse creates a new success envelope carrying data
func NewSuccessResponse(data any) *Response {
	return &Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

// NewErrorResponse creates a new error envelope carrying the message
func NewErrorResponse(message string) *Response {
	return &Response{
		Status: StatusError,
		Error:  message,
	}
}

// NewMethodNotSupportedResponse is the default envelope of every dispatch
func NewMethodNotSupportedResponse() *Response {
	return NewErrorResponse(MsgMethodNotSupported)
}

// --------------------------------------------------------------------------
// Status Definition
// --------------------------------------------------------------------------

// Status is the outcome of a remote call as reported by the server.
type Status uint8

const (
	StatusUnknown Status = iota // Status field absent or not recognized
	StatusSuccess               // The handler returned normally
	StatusError                 // The call failed, see Response.Error
)

// String returns the wire representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for Status.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusUnknown {
		return nil, fmt.Errorf("cannot encode unknown status")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Status.
// Unrecognized values are rejected so the client can report an unknown response.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	switch str {
	case "success":
		*s = StatusSuccess
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status: %s", str)
	}

	return nil
}
