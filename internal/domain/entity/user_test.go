package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"customer", RoleCustomer, false},
		{"field_worker", RoleFieldWorker, false},
		{"admin", RoleAdmin, false},
		{"superuser", "", true},
		{"Admin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser_Principal(t *testing.T) {
	u := &User{ID: 4, Role: RoleFieldWorker, IsApproved: true}

	p := u.Principal()

	assert.Equal(t, Principal{ID: 4, Role: RoleFieldWorker, Approved: true}, p)
	assert.True(t, p.IsFieldWorker())
	assert.False(t, p.IsAdmin())
	assert.False(t, p.IsCustomer())
}

func TestTask_IsAssignedTo(t *testing.T) {
	worker := int64(9)

	assert.True(t, (&Task{AssignedToID: &worker}).IsAssignedTo(9))
	assert.False(t, (&Task{AssignedToID: &worker}).IsAssignedTo(10))
	assert.False(t, (&Task{}).IsAssignedTo(9))
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, RequestStatusCancelled.IsValid())
	assert.False(t, RequestStatus("closed").IsValid())
	assert.True(t, UrgencyHigh.IsValid())
	assert.False(t, Urgency("urgent").IsValid())
}
