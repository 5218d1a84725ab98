package log

// FieldService tags every record with the emitting process.
const FieldService = "service"

// Service names used with Setup.
const (
	ServiceAPI         = "spendwatch"
	ServiceAlertWorker = "alert-worker"
	ServiceSweepWorker = "sweep-worker"
)
