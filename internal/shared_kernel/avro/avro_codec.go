package avro

import (
	"fmt"
	"reflect"

	"github.com/hamba/avro/v2"
)

// Schematic is implemented by messages that carry their own Avro schema.
type Schematic interface {
	AvroSchema() string
}

// AvroCodec encodes one message type with its static schema. It is the
// codec used when no schema registry is configured.
type AvroCodec struct {
	prototype reflect.Type
	schema    avro.Schema
}

func NewAvroCodec(prototype Schematic) (*AvroCodec, error) {
	schema, err := avro.Parse(prototype.AvroSchema())
	if err != nil {
		return nil, fmt.Errorf("parsing avro schema for %T: %w", prototype, err)
	}

	return &AvroCodec{
		prototype: valueType(prototype),
		schema:    schema,
	}, nil
}

func (c *AvroCodec) Encode(value any) ([]byte, error) {
	if err := c.accepts(value); err != nil {
		return nil, err
	}

	data, err := avro.Marshal(c.schema, value)
	if err != nil {
		return nil, fmt.Errorf("marshaling to avro: %w", err)
	}
	return data, nil
}

// Decode returns a value of the prototype type, not a pointer to it.
func (c *AvroCodec) Decode(data []byte) (any, error) {
	instance := reflect.New(c.prototype)
	if err := avro.Unmarshal(c.schema, data, instance.Interface()); err != nil {
		return nil, fmt.Errorf("unmarshaling from avro: %w", err)
	}
	return instance.Elem().Interface(), nil
}

func (c *AvroCodec) accepts(value any) error {
	if value == nil || valueType(value) != c.prototype {
		return fmt.Errorf("codec for %s cannot encode %T", c.prototype, value)
	}
	return nil
}

func valueType(value any) reflect.Type {
	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
