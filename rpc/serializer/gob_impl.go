package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/dynDB/rpc/common"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	dec := gob.NewDecoder(bytes.NewReader(b))
	return dec.Decode(msg)
}
