package streams

// Stream name constants
const (
	StreamDefinitionEvents = "definition:events"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// maxStreamLen bounds the stream; older entries are trimmed approximately.
const maxStreamLen = 10000
