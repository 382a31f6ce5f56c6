package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldSources   = "sources"
	FieldRecords   = "records"
	FieldRows      = "rows"
	FieldKept      = "kept"
	FieldWarnings  = "warnings"
	FieldView      = "view"
	FieldDuration  = "duration_ms"
	FieldCacheHit  = "cache_hit"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldYear      = "year"
	FieldMonth     = "month"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentLoader    = "loader"
	ComponentSources   = "sources"
	ComponentCache     = "cache"
	ComponentAnalytics = "analytics"
	ComponentAnomaly   = "anomaly"
	ComponentSegment   = "segment"
	ComponentReport    = "report"
	ComponentNotify    = "notify"
)

// Operations defines standard operation names
const (
	OpFetch     = "fetch"
	OpList      = "list"
	OpNormalize = "normalize"
	OpMerge     = "merge"
	OpBuild     = "build"
	OpPublish   = "publish"
	OpShutdown  = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRunID adds the load run identifier
func (f LogFields) WithRunID(id string) LogFields {
	f[FieldRunID] = id
	return f
}

// WithSource adds the batch source name
func (f LogFields) WithSource(name string) LogFields {
	f[FieldSource] = name
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBatch adds row accounting for one normalized batch
func (f LogFields) WithBatch(rows, kept int) LogFields {
	f[FieldRows] = rows
	f[FieldKept] = kept
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
