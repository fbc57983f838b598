// Package recipe defines the typed entity graph materialized from schema.org
// Recipe markup: the node kinds, their properties, and the relationships a
// normalized Recipe implies.
package recipe

// Kind names an entity kind. Its string value doubles as the graph label.
type Kind string

// Entity kinds written to the graph store.
const (
	KindRecipe      Kind = "Recipe"
	KindAuthor      Kind = "Author"
	KindPublisher   Kind = "Publisher"
	KindNutrition   Kind = "Nutrition"
	KindInstruction Kind = "RecipeInstruction"
	KindReview      Kind = "Review"
	KindVideo       Kind = "Video"
	KindImage       Kind = "Image"
)

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindRecipe,
		KindAuthor,
		KindPublisher,
		KindNutrition,
		KindInstruction,
		KindReview,
		KindVideo,
		KindImage,
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns the graph label for the kind.
func (k Kind) Label() string {
	return string(k)
}

// RelationshipType names a directed, typed edge.
type RelationshipType string

// Relationship types written between nodes.
const (
	RelAuthoredBy  RelationshipType = "AUTHORED_BY"
	RelPublishedBy RelationshipType = "PUBLISHED_BY"
	RelLinksImage  RelationshipType = "LINKS_IMAGE"
	RelNutrition   RelationshipType = "NUTRITIONAL_INFORMATION"
	RelInstruction RelationshipType = "RECIPE_INSTRUCTION"
	RelHasReview   RelationshipType = "HAS_REVIEW"
	RelLinksVideo  RelationshipType = "LINKS_VIDEO"
)

// RelationshipTypes lists every relationship type.
func RelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelAuthoredBy,
		RelPublishedBy,
		RelLinksImage,
		RelNutrition,
		RelInstruction,
		RelHasReview,
		RelLinksVideo,
	}
}

// Valid reports whether t is one of the known relationship types.
func (t RelationshipType) Valid() bool {
	for _, known := range RelationshipTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Edge is a relationship between two node identifiers.
type Edge struct {
	Source string
	Target string
	Type   RelationshipType
}

// Entity is any node produced by normalization.
type Entity interface {
	Identifier() string
	Kind() Kind
	Properties() map[string]any
}

// Tagged pairs a discovered sub-entity with its kind.
type Tagged struct {
	Kind   Kind
	Entity Entity
}

// Tag wraps e with its own kind.
func Tag(e Entity) Tagged {
	return Tagged{Kind: e.Kind(), Entity: e}
}
