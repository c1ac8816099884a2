package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
)

func TestParseDocument(t *testing.T) {
	t.Run("Success_FlatObject", func(t *testing.T) {
		doc, err := ParseDocument(`{"API_KEY":"abc","DB_PASSWORD":"s3cr3t"}`)

		require.NoError(t, err)
		assert.Equal(t, Document{"API_KEY": "abc", "DB_PASSWORD": "s3cr3t"}, doc)
	})

	t.Run("Success_EmptyObject", func(t *testing.T) {
		doc, err := ParseDocument(`{}`)

		require.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Empty(t, doc)
	})

	t.Run("Error_NotJSON", func(t *testing.T) {
		_, err := ParseDocument(`{not json`)

		assert.ErrorIs(t, err, ErrMalformedDocument)
		assert.False(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_Null", func(t *testing.T) {
		_, err := ParseDocument(`null`)

		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("Error_Array", func(t *testing.T) {
		_, err := ParseDocument(`["a","b"]`)

		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("Error_NonStringValue", func(t *testing.T) {
		_, err := ParseDocument(`{"a":5}`)

		assert.ErrorIs(t, err, ErrMalformedDocument)
		assert.Contains(t, err.Error(), `"a"`)
	})
}

func TestDocument_Serialize(t *testing.T) {
	t.Run("SortedKeys", func(t *testing.T) {
		raw, err := Document{"b": "2", "a": "1"}.Serialize()

		require.NoError(t, err)
		assert.Equal(t, `{"a":"1","b":"2"}`, raw)
	})

	t.Run("NilIsEmptyObject", func(t *testing.T) {
		var doc Document
		raw, err := doc.Serialize()

		require.NoError(t, err)
		assert.Equal(t, `{}`, raw)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		original := Document{"quote": `he said "hi"`, "unicode": "ção", "empty-ish": " "}
		raw, err := original.Serialize()
		require.NoError(t, err)

		parsed, err := ParseDocument(raw)
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})
}

func TestDocument_KeysAndClone(t *testing.T) {
	doc := Document{"z": "1", "a": "2", "m": "3"}

	assert.Equal(t, []string{"a", "m", "z"}, doc.Keys())

	clone := doc.Clone()
	clone["new"] = "x"
	assert.NotContains(t, doc, "new")

	var nilDoc Document
	assert.NotNil(t, nilDoc.Clone())
	assert.Empty(t, nilDoc.Keys())
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		input    string
		expected WriteMode
		wantErr  bool
	}{
		{input: "replace", expected: WriteModeReplace},
		{input: "", expected: WriteModeReplace},
		{input: "merge", expected: WriteModeMerge},
		{input: "patch", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseWriteMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWriteMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}
