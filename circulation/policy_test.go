package circulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	allOps := []Operation{
		OpBorrow, OpReturn,
		OpCreateBook, OpUpdateBook, OpDeleteBook,
		OpCreateGenre, OpUpdateGenre, OpDeleteGenre,
		OpCreateMember, OpUpdateMember, OpDeleteMember,
		OpManageStaff, OpViewReports,
	}

	// Admins may do everything.
	for _, op := range allOps {
		assert.True(t, CanPerform(RoleAdmin, op), "admin %s", op)
	}

	// Unknown roles may do nothing.
	for _, op := range allOps {
		assert.False(t, CanPerform(Role("intern"), op), "intern %s", op)
		assert.False(t, CanPerform(Role(""), op), "empty role %s", op)
	}

	tests := []struct {
		op      Operation
		allowed bool
	}{
		{OpBorrow, true},
		{OpReturn, true},
		{OpCreateBook, true},
		{OpUpdateBook, true},
		{OpDeleteBook, false},
		{OpCreateGenre, false},
		{OpUpdateGenre, false},
		{OpDeleteGenre, false},
		{OpCreateMember, true},
		{OpUpdateMember, true},
		{OpDeleteMember, true},
		{OpManageStaff, false},
		{OpViewReports, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanPerform(RoleLibrarian, tt.op), "librarian %s", tt.op)
	}
}
