package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgpackRoundTrip(t *testing.T) {
	in := testEvent{ItemID: "0b6f", Action: "approve"}

	values, err := EncodeMsgpack(in)
	require.NoError(t, err)
	require.Contains(t, values, payloadField)

	out, err := DecodeMsgpack[testEvent](values)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeMsgpack_RejectsPointers(t *testing.T) {
	_, err := EncodeMsgpack(&testEvent{})
	assert.ErrorIs(t, err, ErrPointerType)
}

func TestDecodeMsgpack(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		want    testEvent
		wantErr string
	}{
		{name: "empty entry", values: map[string]any{}},
		{name: "missing field", values: map[string]any{"other": "x"}, wantErr: "data field not found"},
		{name: "wrong type", values: map[string]any{"data": 42}, wantErr: "data field not found"},
		{name: "bad base64", values: map[string]any{"data": "%%%"}, wantErr: "base64 decode error"},
		{name: "bad msgpack", values: map[string]any{"data": "/w=="}, wantErr: "msgpack unmarshal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMsgpack[testEvent](tt.values)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeMsgpack[*testEvent](map[string]any{"data": ""})
	assert.ErrorIs(t, err, ErrPointerType)
}

func TestDeadLetterStream(t *testing.T) {
	assert.Equal(t, "notifications:dead-letter", DeadLetterStream("notifications"))
}
