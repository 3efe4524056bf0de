package domain

import (
	"time"
)

// FieldDefinitionEventsTopic carries every catalog write, keyed by context.
const FieldDefinitionEventsTopic = "field_definitions"

type EventType string

const (
	EventFieldCreated EventType = "field_created"
	EventFieldUpdated EventType = "field_updated"
	EventFieldDeleted EventType = "field_deleted"
)

// FieldDefinitionEvent announces a write to the catalog. Consumers only
// need the context to drop cached lists; the definition itself is read
// back from the store.
type FieldDefinitionEvent struct {
	Type              string `json:"type" avro:"type"`
	FieldDefinitionID string `json:"field_definition_id" avro:"field_definition_id"`
	Context           string `json:"context" avro:"context"`
	FieldName         string `json:"field_name" avro:"field_name"`
	Version           int64  `json:"version" avro:"version"`
	OccurredAt        int64  `json:"occurred_at" avro:"occurred_at"`
	TraceID           string `json:"trace_id" avro:"trace_id"`
	SpanID            string `json:"span_id" avro:"span_id"`
	TraceFlags        string `json:"trace_flags" avro:"trace_flags"`
}

const fieldDefinitionEventSchema = `{
	"type": "record",
	"name": "FieldDefinitionEvent",
	"namespace": "loanportal.field_catalog",
	"fields": [
		{"name": "type", "type": "string"},
		{"name": "field_definition_id", "type": "string"},
		{"name": "context", "type": "string"},
		{"name": "field_name", "type": "string"},
		{"name": "version", "type": "long"},
		{"name": "occurred_at", "type": "long"},
		{"name": "trace_id", "type": "string"},
		{"name": "span_id", "type": "string"},
		{"name": "trace_flags", "type": "string"}
	]
}`

func (e FieldDefinitionEvent) AvroSchema() string {
	return fieldDefinitionEventSchema
}

func NewFieldDefinitionEvent(eventType EventType, def FieldDefinition) FieldDefinitionEvent {
	return FieldDefinitionEvent{
		Type:              string(eventType),
		FieldDefinitionID: def.ID.String(),
		Context:           string(def.Context),
		FieldName:         def.FieldName.String(),
		Version:           int64(def.Version),
		OccurredAt:        time.Now().UnixMilli(),
	}
}

func (e FieldDefinitionEvent) EventType() EventType {
	return EventType(e.Type)
}

func (e FieldDefinitionEvent) FieldContext() FieldContext {
	return FieldContext(e.Context)
}

func (e FieldDefinitionEvent) Time() time.Time {
	return time.UnixMilli(e.OccurredAt)
}
