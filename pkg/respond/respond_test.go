package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		wantBody any
	}{
		{
			name:     "object",
			data:     map[string]string{"message": "success"},
			wantBody: map[string]any{"message": "success"},
		},
		{
			name:     "numbers",
			data:     map[string]int{"id": 123},
			wantBody: map[string]any{"id": float64(123)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty slice stays an array",
			data:     []string{},
			wantBody: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, JSON(&buf, tt.data))

			var got any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		message string
	}{
		{name: "invalid input", kind: "invalid_input", message: "invalid filter: unknown sort field"},
		{name: "not found", kind: "not_found", message: "not found"},
		{name: "internal", kind: "internal", message: "store unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Error(&buf, tt.kind, tt.message))

			var got ErrorBody
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.message, got.Error)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestJSON_WriteFailure(t *testing.T) {
	err := JSON(failingWriter{}, map[string]string{"a": "b"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "closed pipe"))
}
