package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Storage errors.

	// CodeIO indicates a filesystem read, write, copy, rename, or delete failed.
	CodeIO ErrorCode = "IO_FAILURE"

	// CodeNotFound indicates a requested project or image does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the target of a create or rename already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeLedgerCorrupt indicates the evaluation ledger exists but cannot be parsed.
	CodeLedgerCorrupt ErrorCode = "LEDGER_CORRUPT"

	// Image errors.

	// CodeDecodeFailed indicates every decode path for an image failed.
	CodeDecodeFailed ErrorCode = "DECODE_FAILURE"

	// CodePreviewFailed indicates resizing or encoding a preview failed.
	CodePreviewFailed ErrorCode = "PREVIEW_GENERATION_FAILURE"

	// Validation errors.

	// CodeInvalidName indicates a project, folder, or image name is unusable.
	CodeInvalidName ErrorCode = "INVALID_NAME"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNoMatchingImages indicates an evaluation request resolved to zero images.
	CodeNoMatchingImages ErrorCode = "NO_MATCHING_IMAGES"

	// Configuration errors.

	// CodeInvalidConfig indicates configuration values violate the schema.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeConfigLoadFailed indicates the configuration file could not be read or compiled.
	CodeConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"

	// CodeConfigDecodeFailed indicates a configuration value could not be decoded into Go types.
	CodeConfigDecodeFailed ErrorCode = "CONFIG_DECODE_FAILED"

	// Evaluation errors.

	// CodeEvaluationFailed indicates the evaluation client failed as a whole.
	CodeEvaluationFailed ErrorCode = "EVALUATION_FAILED"

	// Infrastructure errors.

	// CodeTimeout indicates an operation exceeded its time limit or was cancelled.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates a collaborator is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// System errors.

	// CodeInternal indicates an internal invariant was violated.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
