package proto

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// CodecName content-subtype, под которым зарегистрирован кодек: application/grpc+json
const CodecName = "json"

// Codec кодирует сообщения в JSON вместо protobuf
type Codec struct{}

// Marshal кодирует сообщение
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal декодирует сообщение
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name имя кодека
func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
