package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldDocType   = "doc_type"
	FieldNumber    = "number"
	FieldClientID  = "client_id"
	FieldStatus    = "status"
	FieldTotalHT   = "total_ht"
	FieldDueOn     = "due_on"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
