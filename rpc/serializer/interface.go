package serializer

import "github.com/ValentinKolb/mqRPC/rpc/common"

// IRPCSerializer is the interface for all wire encodings of invocations and response envelopes
type IRPCSerializer interface {
	// SerializeInvocation serializes an Invocation into a message body.
	// It returns an *common.EncodingError if an argument is not representable
	SerializeInvocation(inv common.Invocation) ([]byte, error)
	// DeserializeInvocation deserializes a message body into an Invocation
	DeserializeInvocation(b []byte, inv *common.Invocation) error
	// SerializeResponse serializes a Response envelope into a message body.
	// It returns an *common.EncodingError if the data is not representable
	SerializeResponse(resp common.Response) ([]byte, error)
	// DeserializeResponse deserializes a message body into a Response envelope.
	// An absent status field is not an error, it leaves resp.Status at common.StatusUnknown
	DeserializeResponse(b []byte, resp *common.Response) error
	// ContentType returns the MIME type attached to published messages
	ContentType() string
}
