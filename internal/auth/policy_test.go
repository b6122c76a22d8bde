package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeDisjointRoles(t *testing.T) {
	p := DefaultPolicy()
	id := &Identity{UserID: "u1", Roles: []string{RoleUser}}

	err := p.Authorize(id, OpCreateProduct)
	assert.ErrorIs(t, err, ErrInsufficientRole)
}

func TestAuthorizeIntersection(t *testing.T) {
	p := Policy{"op": {RoleAdmin, "support"}}

	assert.NoError(t, p.Authorize(&Identity{Roles: []string{"support"}}, "op"))
	assert.NoError(t, p.Authorize(&Identity{Roles: []string{RoleUser, RoleAdmin}}, "op"))
	assert.ErrorIs(t, p.Authorize(&Identity{Roles: []string{RoleUser}}, "op"), ErrInsufficientRole)
}

func TestAuthorizeUnknownOperationDenied(t *testing.T) {
	p := DefaultPolicy()
	id := &Identity{UserID: "u1", Roles: []string{RoleAdmin}}

	assert.ErrorIs(t, p.Authorize(id, "not.registered"), ErrInsufficientRole)
}

func TestDefaultPolicyAdminOnlyOperations(t *testing.T) {
	p := DefaultPolicy()
	admin := &Identity{Roles: []string{RoleAdmin}}
	user := &Identity{Roles: []string{RoleUser}}

	for _, op := range []string{OpCreateProduct, OpUpdateProduct, OpDeleteProduct, OpListUsers} {
		assert.NoError(t, p.Authorize(admin, op), op)
		assert.ErrorIs(t, p.Authorize(user, op), ErrInsufficientRole, op)
	}
	for _, op := range []string{OpPlaceOrder, OpGetOrder, OpGetUser} {
		assert.NoError(t, p.Authorize(admin, op), op)
		assert.NoError(t, p.Authorize(user, op), op)
	}
}
