package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil, StageRead, "a.pdf.txt"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		stage string
		want  ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, StageRead, ErrCodeTimeout},
		{"cancelled", fmt.Errorf("reading a: %w", context.Canceled), StageRead, ErrCodeContextCancelled},
		{"too large", fmt.Errorf("reading a: %w", ErrTooLarge), StageRead, ErrCodeContentTooLarge},
		{"tagger", fmt.Errorf("%w: boom", ErrTagger), StageExtract, ErrCodeTagger},
		{"missing file", fmt.Errorf("reading a: %w", fs.ErrNotExist), StageRead, ErrCodeNotFound},
		{"missing input", fmt.Errorf("input: %w", ErrNotFound), StageDiscover, ErrCodeNotFound},
		{"permission", fmt.Errorf("open: %w", fs.ErrPermission), StageRead, ErrCodePermission},
		{"generic read", errors.New("device error"), StageRead, ErrCodeRead},
		{"read message", errors.New("reading x: i/o timeout"), StageExtract, ErrCodeRead},
		{"write stage", errors.New("disk full"), StageWrite, ErrCodeWrite},
		{"unknown", errors.New("something odd"), StageExtract, ErrCodeProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ee := ClassifyError(tt.err, tt.stage, "a.pdf.txt")
			require.NotNil(t, ee)
			assert.Equal(t, tt.want, ee.Code)
			assert.Equal(t, tt.stage, ee.Stage)
			assert.Equal(t, "a.pdf.txt", ee.File)
			assert.ErrorIs(t, ee, tt.err)
		})
	}
}

func TestClassifyError_KeepsExistingClassification(t *testing.T) {
	orig := &ExtractError{Code: ErrCodeTagger, Stage: StageExtract, File: "x", Message: "bad"}
	wrapped := fmt.Errorf("run: %w", orig)

	got := ClassifyError(wrapped, StageRead, "y")
	assert.Same(t, orig, got)
}

func TestExtractError_Error(t *testing.T) {
	withFile := &ExtractError{Code: ErrCodeRead, Stage: StageRead, File: "a.pdf.txt", Message: "boom"}
	assert.Equal(t, "read_error: read a.pdf.txt: boom", withFile.Error())

	withStage := &ExtractError{Code: ErrCodeWrite, Stage: StageWrite, Message: "disk full"}
	assert.Equal(t, "write_error: write: disk full", withStage.Error())

	bare := &ExtractError{Code: ErrCodeProcessing, Message: "odd"}
	assert.Equal(t, "processing_error: odd", bare.Error())
}

func TestCodeOf(t *testing.T) {
	ee := ClassifyError(ErrTooLarge, StageRead, "a")
	assert.Equal(t, ErrCodeContentTooLarge, CodeOf(fmt.Errorf("wrap: %w", ee)))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
