package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/homehub/internal/common"
)

func TestPolicy_CanModify(t *testing.T) {
	p := NewPolicy("alex")

	tests := []struct {
		name  string
		user  string
		owner string
		want  bool
	}{
		{"creator", "sam", "sam", true},
		{"configured admin", "alex", "sam", true},
		{"administrator alias", "Administrator", "sam", true},
		{"admin alias", "admin", "sam", true},
		{"other user", "kim", "sam", false},
		{"anonymous", "", "", false},
		{"case sensitive", "Sam", "sam", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanModify(tt.user, tt.owner))
		})
	}
}

func TestPolicy_Authorize(t *testing.T) {
	p := NewPolicy("alex")

	assert.NoError(t, p.Authorize("sam", "sam", "update reminder"))
	err := p.Authorize("kim", "sam", "update reminder")
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, err.Error(), "update reminder")
}

func TestPolicy_IsOwnerAdmin(t *testing.T) {
	p := NewPolicy(" alex ")

	assert.Equal(t, "alex", p.AdminName())
	assert.True(t, p.IsOwnerAdmin("alex"))
	assert.False(t, p.IsOwnerAdmin("admin"))
	assert.True(t, p.IsAdmin("admin"))
	assert.False(t, NewPolicy("").IsOwnerAdmin(""))
}
