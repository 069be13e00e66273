// Package errors provides the structured error type used across imagedesk.
//
// Every error that crosses a package boundary is a PlatformError carrying an
// ErrorCode, a retry classification, an optional context map, and the wrapped
// cause. The package stays compatible with the standard library (errors.Is,
// errors.As, errors.Unwrap), so callers can still match on sentinel values such
// as fs.ErrNotExist through the chain.
//
// # Codes
//
// The codes mirror the failure taxonomy of the image subsystem:
//
//   - CodeIO: filesystem read/write/copy/delete failures
//   - CodeDecodeFailed, CodePreviewFailed: per-image failures that never abort a batch
//   - CodeNoMatchingImages: an evaluation request resolved to zero files
//   - CodeInvalidName: a supplied name is empty, nested too deep, or unsafe
//   - CodeLedgerCorrupt: the evaluation ledger could not be parsed
//   - CodeConfigLoadFailed, CodeConfigDecodeFailed, CodeInvalidConfig: configuration
//
// # Usage
//
//	data, err := st.ReadBytes(path)
//	if err != nil {
//	    return errors.Wrapf(err, errors.CodeIO, "failed to read %s", path)
//	}
//
//	err = errors.WithContext(err, "project", name)
//	if errors.GetCode(err) == errors.CodeNoMatchingImages {
//	    // surface to the user
//	}
//
// Errors render as "[CODE] message: cause". ToJSON produces a flat
// ErrorResponse for presentation layers and omits the cause chain.
package errors
