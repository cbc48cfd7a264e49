package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "cosmos-admin context key " + string(c)
}

const (
	// RequestIDKey carries the activity id sent with every remote call.
	RequestIDKey = contextKey("requestID")
	// OperationKey names the admin operation in flight (e.g. "collection.create").
	OperationKey = contextKey("operation")
	// DatabaseIDKey and CollectionIDKey carry the target resource ids.
	DatabaseIDKey   = contextKey("databaseID")
	CollectionIDKey = contextKey("collectionID")
	// ComponentKey tags log lines with the emitting component.
	ComponentKey = contextKey("component")
	// SubjectKey is the authenticated caller of the HTTP admin surface.
	SubjectKey = contextKey("subject")
)
