package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldCategory    = "category"
	FieldTransaction = "transaction"
	FieldAmount      = "amount"
	FieldType        = "transaction_type"
	FieldCacheKey    = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentSeeder    = "seeder"
	ComponentDashboard = "dashboard"
	ComponentCache     = "cache"
	ComponentEvents    = "events"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSeed     = "seed"
	OpMigrate  = "migrate"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
