package version

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engine        string
		required      string
		expectCode    errors.ErrorCode
		expectError   bool
		errorContains string
	}{
		{name: "no requirement", engine: "1.0.0", required: ""},
		{name: "exact match", engine: "v1.2.0", required: "1.2.0"},
		{name: "patch differs", engine: "1.2.7", required: "v1.2.0"},
		{name: "dev engine", engine: "main", required: "9.9.9"},
		{name: "dev requirement", engine: "1.2.0", required: "main"},
		{name: "caret constraint", engine: "1.4.0", required: "^1.0"},
		{name: "range constraint", engine: "1.4.0", required: ">= 1.2, < 2"},
		{
			name: "minor mismatch", engine: "1.3.0", required: "1.2.0",
			expectError: true, expectCode: errors.ErrCodeVersionMismatch, errorContains: "1.3.x",
		},
		{
			name: "constraint not met", engine: "2.0.0", required: "^1.0",
			expectError: true, expectCode: errors.ErrCodeVersionMismatch, errorContains: "does not satisfy",
		},
		{
			name: "garbage requirement", engine: "1.0.0", required: "not-a-version!",
			expectError: true, expectCode: errors.ErrCodeInvalidVersion,
		},
		{
			name: "garbage engine", engine: "x.y", required: "1.0.0",
			expectError: true, expectCode: errors.ErrCodeInvalidVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatibility(tt.engine, tt.required)
			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.expectCode, errors.GetCode(err))

			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
