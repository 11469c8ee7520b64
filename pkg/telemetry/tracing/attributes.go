package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by querybuilder.
const (
	AttrQueryName = attribute.Key("query.name")
	AttrOperation = attribute.Key("query.operation")
	AttrNodeID    = attribute.Key("query.node_id")
	AttrNodeCount = attribute.Key("query.node_count")
	AttrBackend   = attribute.Key("storage.backend")
)

// QueryAttributes returns the attributes describing one editor operation.
func QueryAttributes(name, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrQueryName.String(name),
		AttrOperation.String(operation),
	}
}
