package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the parse run ID
	FieldRunID = "run_id"

	// FieldKeyword is the search keyword being processed
	FieldKeyword = "keyword"

	// FieldHHID is the external hh.ru entity ID
	FieldHHID = "hh_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields, used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldPage is the current page of a paginated upstream request
	FieldPage = "page"
)
