package avro

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"loanportal-server/internal/infra/cache"
	"reflect"
	"sync"
	"time"

	"github.com/linkedin/goavro/v2"
	"github.com/riferrei/srclient"
)

const (
	_defaultCodecCacheTTL = 5 * time.Minute
	_magicByte            = 0
	_headerSize           = 5
)

var ErrInvalidWireFormat = errors.New("invalid confluent wire format")

// SchemaRegistry is the part of the srclient API the codec uses.
type SchemaRegistry interface {
	GetLatestSchema(subject string) (*srclient.Schema, error)
	CreateSchema(subject string, schema string, schemaType srclient.SchemaType, references ...srclient.Reference) (*srclient.Schema, error)
	GetSchema(schemaID int) (*srclient.Schema, error)
}

// ConfluentAvroCodec writes the Confluent wire format: a zero magic byte,
// the big endian schema id, then the Avro binary body. The schema is
// registered under "<topic>-value" the first time a message is encoded.
type ConfluentAvroCodec struct {
	prototype      reflect.Type
	schema         string
	subject        string
	schemaRegistry SchemaRegistry
	codecCache     cache.Cache

	mu       sync.Mutex
	schemaID int
}

func NewConfluentAvroCodec(topic string, prototype Schematic, schemaRegistry SchemaRegistry) (*ConfluentAvroCodec, error) {
	if _, err := goavro.NewCodec(prototype.AvroSchema()); err != nil {
		return nil, fmt.Errorf("parsing avro schema for %T: %w", prototype, err)
	}

	codecCache, err := cache.New(&cache.CacheConfig{
		MaxCost:     1 << 10,
		NumCounters: 1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating codec cache: %w", err)
	}

	return &ConfluentAvroCodec{
		prototype:      valueType(prototype),
		schema:         prototype.AvroSchema(),
		subject:        topic + "-value",
		schemaRegistry: schemaRegistry,
		codecCache:     codecCache,
	}, nil
}

func (c *ConfluentAvroCodec) Encode(value any) ([]byte, error) {
	if value == nil || valueType(value) != c.prototype {
		return nil, fmt.Errorf("codec for %s cannot encode %T", c.prototype, value)
	}

	schemaID, err := c.getOrRegisterSchemaID()
	if err != nil {
		return nil, fmt.Errorf("getting schema id: %w", err)
	}

	codec, err := c.getCodecByID(schemaID)
	if err != nil {
		return nil, err
	}

	textual, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling %T: %w", value, err)
	}
	native, _, err := codec.NativeFromTextual(textual)
	if err != nil {
		return nil, fmt.Errorf("converting to avro native: %w", err)
	}
	body, err := codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encoding to avro: %w", err)
	}

	result := make([]byte, _headerSize+len(body))
	result[0] = _magicByte
	binary.BigEndian.PutUint32(result[1:_headerSize], uint32(schemaID))
	copy(result[_headerSize:], body)
	return result, nil
}

// Decode resolves the writer schema by the id in the header, so messages
// written with an older registered version still decode.
func (c *ConfluentAvroCodec) Decode(data []byte) (any, error) {
	if len(data) < _headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidWireFormat, len(data))
	}
	if data[0] != _magicByte {
		return nil, fmt.Errorf("%w: magic byte %d", ErrInvalidWireFormat, data[0])
	}

	codec, err := c.getCodecByID(int(binary.BigEndian.Uint32(data[1:_headerSize])))
	if err != nil {
		return nil, err
	}

	native, _, err := codec.NativeFromBinary(data[_headerSize:])
	if err != nil {
		return nil, fmt.Errorf("decoding avro body: %w", err)
	}
	textual, err := codec.TextualFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("converting avro native: %w", err)
	}

	instance := reflect.New(c.prototype)
	if err := json.Unmarshal(textual, instance.Interface()); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", c.prototype, err)
	}
	return instance.Elem().Interface(), nil
}

func (c *ConfluentAvroCodec) getOrRegisterSchemaID() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schemaID != 0 {
		return c.schemaID, nil
	}

	registered, err := c.schemaRegistry.GetLatestSchema(c.subject)
	if err == nil && registered != nil && registered.Schema() == c.schema {
		c.schemaID = registered.ID()
		return c.schemaID, nil
	}

	created, err := c.schemaRegistry.CreateSchema(c.subject, c.schema, srclient.Avro)
	if err != nil {
		return 0, fmt.Errorf("registering schema under %s: %w", c.subject, err)
	}
	c.schemaID = created.ID()
	return c.schemaID, nil
}

func (c *ConfluentAvroCodec) getCodecByID(schemaID int) (*goavro.Codec, error) {
	ctx := context.Background()
	key := fmt.Sprintf("schema_%d", schemaID)

	value, err := c.codecCache.GetOrSet(ctx, key, _defaultCodecCacheTTL, func() (any, error) {
		schema, err := c.schemaRegistry.GetSchema(schemaID)
		if err != nil {
			return nil, fmt.Errorf("fetching schema %d: %w", schemaID, err)
		}
		codec, err := goavro.NewCodec(schema.Schema())
		if err != nil {
			return nil, fmt.Errorf("creating codec for schema %d: %w", schemaID, err)
		}
		return codec, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*goavro.Codec), nil
}
