package movidesk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"numeric", `12345`, ID("12345"), false},
		{"string", `"AB-99"`, ID("AB-99"), false},
		{"null", `null`, ID(""), false},
		{"fractional number", `12.5`, ID("12.5"), false},
		{"object", `{"id":1}`, "", true},
		{"array", `[1]`, "", true},
		{"bool", `true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
