package records

import (
	"fmt"
	"strings"

	"clientbook/model"
)

// DeletePolicy decides what deleting a customer does to its orders.
type DeletePolicy string

const (
	// Restrict refuses to delete a customer that still has orders.
	Restrict DeletePolicy = "restrict"
	// Cascade deletes the customer's orders in the same commit.
	Cascade DeletePolicy = "cascade"
	// Orphan leaves the orders pointing at the deleted id.
	Orphan DeletePolicy = "orphan"
)

// ParseDeletePolicy accepts restrict, cascade or orphan in any case.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case Restrict, Cascade, Orphan:
		return p, nil
	case "":
		return Restrict, nil
	default:
		return "", model.Invalid("on_customer_delete", fmt.Sprintf("unknown policy %q", s))
	}
}
