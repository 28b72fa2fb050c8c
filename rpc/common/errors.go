package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Server side error messages (sent in the error field of the envelope)
// --------------------------------------------------------------------------

const (
	MsgMethodNotSupported  = "Method Not Support"
	MsgMethodEmpty         = "Method cannot be empty"
	MsgInternalServerError = "Internal Server Error"
	MsgUnknownResponse     = "unknown response"
)

// --------------------------------------------------------------------------
// Sentinel errors
// --------------------------------------------------------------------------

var (
	ErrCallTimeout     = errors.New("rpc: call timed out")
	ErrClientClosed    = errors.New("rpc: client closed")
	ErrDuplicateMethod = errors.New("rpc: method already registered")
	ErrEmptyMethod     = errors.New("rpc: method cannot be empty")
	ErrMissingArgument = errors.New("rpc: missing argument")
)

// --------------------------------------------------------------------------
// Error types
// --------------------------------------------------------------------------

// PrepareError reports a broker, exchange or queue setup failure.
// A session that failed to prepare must not be used for serving or calling.
type PrepareError struct {
	Op  string
	Err error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("prepare: %s: %v", e.Op, e.Err)
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

// EncodingError reports an argument or envelope that is not representable in
// the wire encoding. It only fails the affected call.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a reply that could not be understood
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewUnknownResponseError creates the ProtocolError for replies without a recognizable status
func NewUnknownResponseError(cause error) *ProtocolError {
	return &ProtocolError{Reason: MsgUnknownResponse, Err: cause}
}

// RemoteError is returned to the caller when the server reported status error.
// Message is the server supplied text, the client does not interpret it.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsRemoteError reports whether err is a RemoteError and returns its message
func IsRemoteError(err error) (string, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message, true
	}
	return "", false
}
