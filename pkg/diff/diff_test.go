package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPending(t *testing.T) {
	tests := []struct {
		name       string
		discovered []string
		stored     []string
		want       []string
	}{
		{
			name:       "all new",
			discovered: []string{"1", "2", "3"},
			stored:     nil,
			want:       []string{"1", "2", "3"},
		},
		{
			name:       "all stored",
			discovered: []string{"1", "2"},
			stored:     []string{"1", "2"},
			want:       []string{},
		},
		{
			name:       "partial overlap keeps discovery order",
			discovered: []string{"3", "1", "2", "4"},
			stored:     []string{"1", "4"},
			want:       []string{"3", "2"},
		},
		{
			name:       "duplicates collapse to first occurrence",
			discovered: []string{"1", "2", "1", "2", "3"},
			stored:     nil,
			want:       []string{"1", "2", "3"},
		},
		{
			name:       "id in both partitions and already stored",
			discovered: []string{"1", "1"},
			stored:     []string{"1"},
			want:       []string{},
		},
		{
			name:       "empty ids dropped",
			discovered: []string{"", "1"},
			stored:     nil,
			want:       []string{"1"},
		},
		{
			name:       "empty discovery",
			discovered: nil,
			stored:     []string{"1"},
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pending(tt.discovered, tt.stored)
			assert.Equal(t, tt.want, got)
		})
	}
}
