// Package serializer converts invocations and response envelopes to and from
// message bodies. It defines a common interface and multiple implementations, the
// serializer in use must be the same on client and server.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - jsonSerializerImpl: UTF-8 JSON documents ({"method","args","kwargs"} for
//     requests, {"status","data","error"} for responses). This is the default and
//     the only encoding that interoperates with non-Go peers. Numbers are decoded
//     as json.Number, use the accessors of common.Args to convert them.
//
//   - gobSerializerImpl: Go's gob encoding. Preserves Go types of basic values but
//     requires every custom argument type to be registered with gob.Register.
//
// Errors:
//
//	Serialization failures are returned as *common.EncodingError. Deserialization
//	failures are returned as is so the caller can classify them (the server answers
//	with "Internal Server Error", the client reports an unknown response).
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer := serializer.NewJSONSerializer()
//	body, err := serializer.SerializeInvocation(*common.NewInvocation("add", []any{1, 2}, nil))
//	// ... publish body ...
//	var resp common.Response
//	err = serializer.DeserializeResponse(replyBody, &resp)
package serializer
