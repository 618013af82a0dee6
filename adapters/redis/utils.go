package redis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrPointerType = errors.New("pointer type is not allowed")
)

// payloadField is the single stream entry field holding the encoded message.
const payloadField = "data"

// EncodeMsgpack packs data with msgpack and stores it base64 encoded under
// the payload field of a stream entry.
func EncodeMsgpack[T any](data T) (map[string]any, error) {
	if reflect.TypeOf(data).Kind() == reflect.Ptr {
		return nil, ErrPointerType
	}

	bytes, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}

	return map[string]any{
		payloadField: base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// DecodeMsgpack reverses EncodeMsgpack. An empty entry decodes to the zero value.
func DecodeMsgpack[T any](values map[string]any) (T, error) {
	var result T

	if reflect.TypeOf(result).Kind() == reflect.Ptr {
		return result, ErrPointerType
	}
	if len(values) == 0 {
		return result, nil
	}

	encoded, ok := values[payloadField].(string)
	if !ok {
		return result, fmt.Errorf("%s field not found or invalid type", payloadField)
	}
	bytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return result, fmt.Errorf("base64 decode error: %w", err)
	}
	if err := msgpack.Unmarshal(bytes, &result); err != nil {
		return result, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	return result, nil
}

// DeadLetterStream names the stream that receives entries which could not be processed.
func DeadLetterStream(stream string) string {
	return stream + ":dead-letter"
}
