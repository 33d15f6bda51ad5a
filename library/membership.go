package library

import (
	"fmt"
	"strings"
)

// MembershipType determines how many books a member may hold at once.
// The set of tiers is closed: a new tier is a new value implementing these
// two methods, with no change needed in Member or Library.
type MembershipType interface {
	BorrowLimit() int
	TypeName() string
}

type regularMembership struct{}

func (regularMembership) BorrowLimit() int { return 3 }
func (regularMembership) TypeName() string { return "Regular" }

type premiumMembership struct{}

func (premiumMembership) BorrowLimit() int { return 5 }
func (premiumMembership) TypeName() string { return "Premium" }

var (
	Regular MembershipType = regularMembership{}
	Premium MembershipType = premiumMembership{}
)

// ParseMembershipType resolves a tier by name, case-insensitively.
// It is the inverse of TypeName and is used at the CLI and store boundaries.
func ParseMembershipType(name string) (MembershipType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "regular":
		return Regular, nil
	case "premium":
		return Premium, nil
	}
	return nil, fmt.Errorf("unknown membership type %q", name)
}
