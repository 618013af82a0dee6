package s3_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpawn/adapters/s3"
)

func TestMaxSizeReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxSize int64
		wantN   int
		wantErr string
	}{
		{name: "under the limit", input: "hello", maxSize: 10, wantN: 5},
		{name: "exactly the limit", input: "hello", maxSize: 5, wantN: 5},
		{name: "over the limit", input: "hello world", maxSize: 5, wantN: 5, wantErr: "reach limit of 5 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := s3.NewMaxSizeReader(strings.NewReader(tt.input), tt.maxSize)
			buf := make([]byte, len(tt.input))
			n, err := reader.Read(buf)

			assert.Equal(t, tt.wantN, n)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			assert.True(t, err == nil || err == io.EOF)
		})
	}
}

func TestMaxSizeReader_ReadAll(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, 3<<10)

	got, err := io.ReadAll(s3.NewMaxSizeReader(bytes.NewReader(data), 4<<10))
	require.NoError(t, err)
	assert.Len(t, got, 3<<10)

	_, err = io.ReadAll(s3.NewMaxSizeReader(bytes.NewReader(data), 2<<10))
	var limitErr *s3.ReachLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, int64(2<<10), limitErr.MaxBytes)
	assert.Equal(t, "reach limit of 2.00 KB", err.Error())
}
