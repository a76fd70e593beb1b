package domain

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a fresh 24-character hexadecimal identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s has the identifier format used for categories and products.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}

// NormalizeID lowercases a valid identifier so lookups are case-insensitive.
// Invalid input is returned unchanged.
func NormalizeID(s string) string {
	if !IsValidID(s) {
		return s
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return s
	}
	return oid.Hex()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
