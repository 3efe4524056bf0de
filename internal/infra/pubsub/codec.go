package pubsub

import (
	"encoding/json"
	"fmt"
	"loanportal-server/internal/shared_kernel/avro"
	"reflect"

	"github.com/lovoo/goka"
)

var _ goka.Codec = &JSONCodec{}

// JSONCodec is used for prototypes without an Avro schema.
type JSONCodec struct {
	prototype reflect.Type
}

func newJSONCodec(prototype Prototype) *JSONCodec {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &JSONCodec{prototype: t}
}

func (c *JSONCodec) Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling data: %w", err)
	}
	return data, nil
}

func (c *JSONCodec) Decode(data []byte) (any, error) {
	instance := reflect.New(c.prototype)
	if err := json.Unmarshal(data, instance.Interface()); err != nil {
		return nil, fmt.Errorf("unmarshaling data: %w", err)
	}
	return instance.Elem().Interface(), nil
}

// newCodec picks the wire format of a topic: Confluent Avro when the
// prototype has a schema and a registry is configured, plain Avro when only
// the schema is known, JSON otherwise.
func newCodec(topic Topic, prototype Prototype, registry avro.SchemaRegistry) (goka.Codec, error) {
	schematic, ok := prototype.(avro.Schematic)
	if !ok {
		return newJSONCodec(prototype), nil
	}
	if registry != nil {
		return avro.NewConfluentAvroCodec(string(topic), schematic, registry)
	}
	return avro.NewAvroCodec(schematic)
}
