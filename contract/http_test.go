package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Price
		wantErr  bool
	}{
		{name: "number", input: `{"unitPrice": 1500.5}`, expected: 1500.5},
		{name: "numeric string", input: `{"unitPrice": " 2000 "}`, expected: 2000},
		{name: "empty string", input: `{"unitPrice": ""}`, expected: 0},
		{name: "null", input: `{"unitPrice": null}`, expected: 0},
		{name: "missing", input: `{}`, expected: 0},
		{name: "not a number", input: `{"unitPrice": "abc"}`, wantErr: true},
		{name: "boolean", input: `{"unitPrice": true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req PreferenceRequest
			err := json.Unmarshal([]byte(tt.input), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, req.UnitPrice)
		})
	}
}
