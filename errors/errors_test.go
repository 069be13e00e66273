package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidName, "image name is empty")

	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidName, err.Code())
	assert.Equal(t, "image name is empty", err.Message())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Nil(t, err.Context())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "[INVALID_NAME] image name is empty", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeNoMatchingImages, "no matching images: %v", []string{"a.jpg"})
	assert.Equal(t, "no matching images: [a.jpg]", err.Message())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("remove x.jpg: %w", fs.ErrNotExist)
	err := Wrap(cause, CodeIO, "failed to delete image")

	require.NotNil(t, err)
	assert.Equal(t, CodeIO, err.Code())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, Is(err, fs.ErrNotExist))
	assert.Equal(t, "[IO_FAILURE] failed to delete image: remove x.jpg: file does not exist", err.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeIO, "unused"))
	assert.Nil(t, Wrapf(nil, CodeIO, "unused %d", 1))
	assert.Nil(t, WrapWithContext(nil, CodeIO, "unused", nil))
}

func TestWrap_PreservesClassification(t *testing.T) {
	original := New(CodeTimeout, "decode permit wait cancelled")
	require.True(t, original.Classification().IsRetryable())

	wrapped := Wrap(original, CodeIO, "listing failed")
	assert.True(t, wrapped.Classification().IsRetryable())
	assert.Equal(t, CodeIO, wrapped.Code())
}

func TestWrapWithContext_CopiesMap(t *testing.T) {
	ctx := map[string]interface{}{"project": "holiday"}
	err := WrapWithContext(stderrors.New("boom"), CodeIO, "failed", ctx)

	ctx["project"] = "mutated"
	assert.Equal(t, "holiday", err.Context()["project"])

	got := err.Context()
	got["project"] = "mutated again"
	assert.Equal(t, "holiday", err.Context()["project"])
}

func TestWithContext(t *testing.T) {
	err := New(CodeIO, "copy failed")
	err = WithContext(err, "project", "holiday")
	err = WithContext(err, "name", "a.jpg")

	assert.Equal(t, CodeIO, err.Code())
	assert.Equal(t, map[string]interface{}{"project": "holiday", "name": "a.jpg"}, err.Context())
}

func TestWithContext_StandardError(t *testing.T) {
	err := WithContext(stderrors.New("plain"), "k", "v")

	assert.Equal(t, CodeUnknown, err.Code())
	assert.Equal(t, "plain", err.Message())
	assert.Equal(t, "v", err.Context()["k"])
	assert.Nil(t, WithContext(nil, "k", "v"))
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeIO, "disk busy"), ClassificationRetryable)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, CodeIO, err.Code())
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: CodeUnknown},
		{name: "standard", err: stderrors.New("x"), want: CodeUnknown},
		{name: "platform", err: New(CodeDecodeFailed, "x"), want: CodeDecodeFailed},
		{name: "wrapped by fmt", err: fmt.Errorf("outer: %w", New(CodePreviewFailed, "x")), want: CodePreviewFailed},
		{name: "outermost wins", err: Wrap(New(CodeDecodeFailed, "x"), CodePreviewFailed, "y"), want: CodePreviewFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(New(CodeDecodeFailed, "bad jpeg"), CodePreviewFailed, "preview failed")

	assert.True(t, HasCode(err, CodePreviewFailed))
	assert.True(t, HasCode(err, CodeDecodeFailed))
	assert.False(t, HasCode(err, CodeIO))
	assert.False(t, HasCode(nil, CodeIO))
}

func TestClassificationDefaults(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeTimeout, "")))
	assert.True(t, IsRetryable(New(CodeEvaluationFailed, "")))
	assert.False(t, IsRetryable(New(CodeIO, "")))
	assert.False(t, IsRetryable(New(ErrorCode("SOMETHING_NEW"), "")))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}
