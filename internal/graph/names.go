package graph

import (
	"fmt"

	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

// ValidateLabel rejects labels that are not entity kinds. Labels are spliced
// into Cypher text, so only the fixed vocabulary is accepted.
func ValidateLabel(label string) error {
	if !recipe.Kind(label).Valid() {
		return fmt.Errorf("%w: label %q", ErrInvalidName, label)
	}
	return nil
}

// ValidateRelationship rejects unknown relationship types.
func ValidateRelationship(relType string) error {
	if !recipe.RelationshipType(relType).Valid() {
		return fmt.Errorf("%w: relationship %q", ErrInvalidName, relType)
	}
	return nil
}

// ValidateProperty rejects property keys that are not plain identifiers.
func ValidateProperty(property string) error {
	if property == "" {
		return fmt.Errorf("%w: empty property", ErrInvalidName)
	}
	for _, r := range property {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return fmt.Errorf("%w: property %q", ErrInvalidName, property)
		}
	}
	return nil
}
