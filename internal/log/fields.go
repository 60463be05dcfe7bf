package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldFile       = "file"
	FieldRows       = "rows"
	FieldViews      = "views"
	FieldBackend    = "backend"
	FieldPort       = "port"
)

// Components defines standard component names
const (
	ComponentApp   = "app"
	ComponentHTTP  = "http"
	ComponentStore = "store"
	ComponentCache = "cache"
)

// Operations defines standard operation names
const (
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
