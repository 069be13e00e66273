package errors

// ErrorClassification indicates whether an error should trigger a retry.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
// Filesystem failures are permanent: nothing in this module retries them.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeTimeout:          ClassificationRetryable,
	CodeUnavailable:      ClassificationRetryable,
	CodeEvaluationFailed: ClassificationRetryable,

	CodeIO:                 ClassificationPermanent,
	CodeNotFound:           ClassificationPermanent,
	CodeAlreadyExists:      ClassificationPermanent,
	CodeLedgerCorrupt:      ClassificationPermanent,
	CodeDecodeFailed:       ClassificationPermanent,
	CodePreviewFailed:      ClassificationPermanent,
	CodeInvalidName:        ClassificationPermanent,
	CodeInvalidInput:       ClassificationPermanent,
	CodeNoMatchingImages:   ClassificationPermanent,
	CodeInvalidConfig:      ClassificationPermanent,
	CodeConfigLoadFailed:   ClassificationPermanent,
	CodeConfigDecodeFailed: ClassificationPermanent,
	CodeInternal:           ClassificationPermanent,
	CodeUnknown:            ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error code.
// Unmapped codes are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
