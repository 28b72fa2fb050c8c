package serializer

import (
	"bytes"
	"encoding/json"
	"github.com/ValentinKolb/mqRPC/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Numbers are decoded as json.Number so integers survive the round trip.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeInvocation(inv common.Invocation) ([]byte, error) {
	return j.encode(inv)
}

func (j jsonSerializerImpl) DeserializeInvocation(b []byte, inv *common.Invocation) error {
	return j.decode(b, inv)
}

func (j jsonSerializerImpl) SerializeResponse(resp common.Response) ([]byte, error) {
	return j.encode(resp)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	return j.decode(b, resp)
}

func (j jsonSerializerImpl) ContentType() string {
	return "application/json"
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &common.EncodingError{Err: err}
	}
	return b, nil
}

func (j jsonSerializerImpl) decode(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
