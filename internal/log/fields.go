package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldWindow       = "window"
	FieldPeriod       = "period"
	FieldGeneration   = "generation"
	FieldCollection   = "collection"
	FieldGoalID       = "goal_id"
	FieldGoalTitle    = "goal_title"
	FieldBudgetID     = "budget_id"
	FieldCategory     = "category"
	FieldAmountCents  = "amount_cents"
	FieldMethodName   = "strategy_method"
	FieldSpreadsheet  = "spreadsheet_id"
	FieldRecordCount  = "record_count"
	FieldSnapshotTime = "snapshot_time"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentBackend = "backend"
	ComponentStore   = "store"
	ComponentGoals   = "goals"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
	ComponentTrace   = "trace"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpRefresh   = "refresh"
	OpReconcile = "reconcile"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
