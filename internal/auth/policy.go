package auth

import "errors"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrInsufficientRole = errors.New("insufficient role")

// Policy maps an operation name to the set of roles allowed to perform it.
// It is plain static data consulted at dispatch time, authored once in main.
type Policy map[string][]string

// Operation names registered in the default policy.
const (
	OpCreateProduct = "products.create"
	OpUpdateProduct = "products.update"
	OpDeleteProduct = "products.delete"
	OpListUsers     = "users.list"
	OpGetUser       = "users.get"
	OpPlaceOrder    = "orders.place"
	OpGetOrder      = "orders.get"
)

func DefaultPolicy() Policy {
	return Policy{
		OpCreateProduct: {RoleAdmin},
		OpUpdateProduct: {RoleAdmin},
		OpDeleteProduct: {RoleAdmin},
		OpListUsers:     {RoleAdmin},
		OpGetUser:       {RoleAdmin, RoleUser},
		OpPlaceOrder:    {RoleAdmin, RoleUser},
		OpGetOrder:      {RoleAdmin, RoleUser},
	}
}

// Authorize allows the call iff the identity's role set intersects the
// required set. Pure decision function: no I/O, no mutation. It assumes the
// identity was produced by a successful Verify; composition order enforces
// that, not this function.
func (p Policy) Authorize(id *Identity, operation string) error {
	required, ok := p[operation]
	if !ok || len(required) == 0 {
		// Unregistered operations are closed by default.
		return ErrInsufficientRole
	}
	for _, want := range required {
		if id.HasRole(want) {
			return nil
		}
	}
	return ErrInsufficientRole
}
