package logger

// Field keys shared by every drivegate log line.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldStatus    = "status"
	FieldBytes     = "bytes"
	FieldRange     = "range"

	FieldObjectID = "object_id"
	FieldFolderID = "folder_id"

	FieldMethod   = "method"
	FieldPath     = "path"
	FieldClientIP = "client_ip"
)

// Fields pairs up kvs as key, value, key, value. A non-string key drops its
// pair and a trailing key without a value is ignored.
//
//	log.Info("listed", logger.Fields(logger.FieldFolderID, id, "count", n))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		if k, ok := kvs[i-1].(string); ok {
			m[k] = kvs[i]
		}
	}
	return m
}

// ErrorFields is the field set for a failed op.
func ErrorFields(op string, err error) map[string]any {
	return MergeWithError(Fields(FieldOperation, op), err)
}

// MergeWithError sets the error field on fields, allocating when nil.
func MergeWithError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = map[string]any{}
	}
	fields[FieldError] = err.Error()
	return fields
}
