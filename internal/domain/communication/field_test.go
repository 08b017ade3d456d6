package communication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldEntry(t *testing.T) {
	f, err := NewFieldEntry("MembershipNumber", "Membership number", "profile.membershipNumber", FieldTypeString)
	require.NoError(t, err)
	assert.Equal(t, "profile", f.Source())
	assert.Equal(t, "membershipNumber", f.Path())

	f, err = NewFieldEntry("PlanName", "", "subscription.plan.name", "")
	require.NoError(t, err)
	assert.Equal(t, "plan.name", f.Path())
	assert.Equal(t, FieldTypeString, f.DataType)
	assert.Equal(t, "PlanName", f.Label)

	_, err = NewFieldEntry("1bad", "x", "profile.x", FieldTypeString)
	assert.Error(t, err)
	_, err = NewFieldEntry("Good", "x", "profileonly", FieldTypeString)
	assert.Error(t, err)
	_, err = NewFieldEntry("Good", "x", "profile.x", FieldDataType("bool"))
	assert.Error(t, err)
}

func TestFieldCatalog_Keys(t *testing.T) {
	c := FieldCatalog{{Key: "Name"}, {Key: "DOB"}}
	assert.Equal(t, []string{"Name", "DOB"}, c.Keys())
	assert.True(t, c.Has("DOB"))
	assert.False(t, c.Has("Salary"))
}

func TestFieldCatalog_HasIgnoresCase(t *testing.T) {
	c := FieldCatalog{{Key: "membershipNumber"}, {Key: "DOB"}}
	tests := []struct {
		key  string
		want bool
	}{
		{"membershipNumber", true},
		{"MembershipNumber", true},
		{"MEMBERSHIPNUMBER", true},
		{"dob", true},
		{"membership_number", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Has(tt.key))
		})
	}
}
