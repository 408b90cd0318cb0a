package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservedSet_Contains(t *testing.T) {
	rs := NewReservedSet([]string{"admin", " Login ", "", "api"}, []string{"healthz", "ADMIN"})

	tests := []struct {
		slug string
		want bool
	}{
		{"admin", true},
		{"Admin", true},
		{"ADMIN", true},
		{"login", true},
		{"healthz", true},
		{"HealthZ", true},
		{"api", true},
		{"apis", false},
		{"", false},
		{"abc12", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.Contains(tt.slug))
		})
	}

	assert.Equal(t, rs.Contains("Admin"), rs.Contains("admin"))
}

func TestReservedSet_Words(t *testing.T) {
	rs := NewReservedSet([]string{"Admin", "login"}, []string{"admin", "static"})
	assert.Equal(t, []string{"admin", "login", "static"}, rs.Words())

	words := rs.Words()
	words[0] = "changed"
	assert.True(t, rs.Contains("admin"))
}

func TestReservedSet_Nil(t *testing.T) {
	var rs *ReservedSet
	assert.False(t, rs.Contains("admin"))
}
