package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"github.com/ValentinKolb/mqRPC/rpc/common"
)

func init() {
	// concrete types that may appear behind the opaque any values
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(json.Number(""))
}

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// Only usable if client and server are written in Go, custom argument types
// must be registered with gob.Register on both sides.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) SerializeInvocation(inv common.Invocation) ([]byte, error) {
	return g.encode(inv)
}

func (g gobSerializerImpl) DeserializeInvocation(b []byte, inv *common.Invocation) error {
	return g.decode(b, inv)
}

func (g gobSerializerImpl) SerializeResponse(resp common.Response) ([]byte, error) {
	return g.encode(resp)
}

func (g gobSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	return g.decode(b, resp)
}

func (g gobSerializerImpl) ContentType() string {
	return "application/x-gob"
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (g gobSerializerImpl) encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, &common.EncodingError{Err: err}
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) decode(b []byte, v any) error {
	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)
	return dec.Decode(v)
}
