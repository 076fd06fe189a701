package chunkrpc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName 是 gRPC content-subtype，请求头为 application/grpc+cbor
const CodecName = "cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	encoding.RegisterCodec(Codec{})
}

// Codec 用 CBOR 编解码本包的消息
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(message); !ok {
		return nil, fmt.Errorf("cbor codec: unsupported message type %T", v)
	}
	return encMode.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(message); !ok {
		return fmt.Errorf("cbor codec: unsupported message type %T", v)
	}
	return decMode.Unmarshal(data, v)
}

func (Codec) Name() string { return CodecName }
