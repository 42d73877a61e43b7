package errors

// ErrorCode uniquely identifies a failure category.  Codes are grouped by
// prefix: COMMON for cross-cutting conditions, INGEST for document loading
// and parsing, SEARCH for retrieval backends, LLM for model inference, and
// SESSION for chat-history persistence.
type ErrorCode string

// Common codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeUnknown            ErrorCode = "COMMON_999"
)

// Ingestion codes.  ErrCodeFileUnreadable is fatal for the file it names but
// never for the batch that contains it.
const (
	ErrCodeFileUnreadable   ErrorCode = "INGEST_001"
	ErrCodeEmbeddingFailed  ErrorCode = "INGEST_002"
	ErrCodeIndexWriteFailed ErrorCode = "INGEST_003"
)

// Retrieval codes.
const (
	ErrCodeVectorSearchFailed   ErrorCode = "SEARCH_001"
	ErrCodeMetadataScanFailed   ErrorCode = "SEARCH_002"
	ErrCodeRerankFailed         ErrorCode = "SEARCH_003"
	ErrCodeCatalogSearchFailed  ErrorCode = "SEARCH_004"
)

// Model inference codes.
const (
	ErrCodeSynthesisFailed ErrorCode = "LLM_001"
	ErrCodeModelTimeout    ErrorCode = "LLM_002"
)

// Session persistence codes.
const (
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_001"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_002"
)

// String returns the code identifier.
func (c ErrorCode) String() string { return string(c) }
