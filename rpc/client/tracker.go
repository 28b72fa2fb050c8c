package client

import (
	"strings"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// pendingCall is the record of one outstanding call.
// The channel has capacity one, the tracker sends at most one payload into it.
type pendingCall struct {
	reply chan []byte
}

// correlationTracker matches replies to outstanding calls by correlation token.
// Each call owns its record, so concurrent calls never share a response slot.
type correlationTracker struct {
	pending *xsync.MapOf[string, *pendingCall]
}

// newCorrelationTracker creates an empty tracker
func newCorrelationTracker() *correlationTracker {
	return &correlationTracker{
		pending: xsync.NewMapOf[string, *pendingCall](),
	}
}

// newToken returns a fresh 128 bit random correlation token
func newToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// register creates the pending record for a new call.
// The returned release func must be called once the caller stops waiting.
func (t *correlationTracker) register() (token string, reply <-chan []byte, release func(), err error) {
	token, err = newToken()
	if err != nil {
		return "", nil, nil, err
	}

	call := &pendingCall{reply: make(chan []byte, 1)}
	t.pending.Store(token, call)

	return token, call.reply, func() { t.pending.Delete(token) }, nil
}

// deliver stores the payload in the record matching the token and signals its caller.
// It returns false for replies that match no outstanding call (stale, duplicate or forged).
func (t *correlationTracker) deliver(token string, payload []byte) bool {
	if token == "" {
		return false
	}
	call, ok := t.pending.LoadAndDelete(token)
	if !ok {
		return false
	}
	call.reply <- payload
	return true
}

// outstanding returns the number of calls waiting for a reply
func (t *correlationTracker) outstanding() int {
	return t.pending.Size()
}
