package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability("admin", CanManageProjects))
	assert.True(t, HasCapability("admin", CanManageTickets))
	assert.True(t, HasCapability("manager", CanManageProjects))
	assert.True(t, HasCapability("developer", CanManageTickets))

	assert.False(t, HasCapability("developer", CanManageProjects))
	assert.False(t, HasCapability("viewer", CanManageTickets))
	assert.False(t, HasCapability("viewer", CanManageProjects))
}

func TestHasCapabilityUnknownInputs(t *testing.T) {
	assert.False(t, HasCapability("intern", CanManageTickets))
	assert.False(t, HasCapability("", CanManageProjects))
	assert.False(t, HasCapability("admin", "launch-rockets"))
}
