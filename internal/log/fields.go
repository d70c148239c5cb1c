package log

// Field names shared by the structured log calls across packages, so a
// record emitted by the worker and one emitted by an HTTP handler key the
// same attribute the same way.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldEntryID   = "entry_id"
	FieldDish      = "dish"
)

// ComponentApp stamps records emitted through the default logger.
const ComponentApp = "app"
