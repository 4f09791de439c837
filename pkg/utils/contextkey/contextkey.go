package contextkey

// key is a private type to avoid context key collisions across packages.
type key string

const (
	// TraceID identifies one judging operation across log lines.
	TraceID key = "trace_id"
)
