package recipe

// ImageMode tells a literal image URL apart from a reference to an Image node.
type ImageMode int

// Image list element modes.
const (
	ImageLiteral ImageMode = iota + 1
	ImageReference
)

// String implements fmt.Stringer.
func (m ImageMode) String() string {
	switch m {
	case ImageLiteral:
		return "literal"
	case ImageReference:
		return "reference"
	default:
		return "unknown"
	}
}

// ImageRef is one element of a mixed-mode image list. Value holds the URL for
// ImageLiteral or the Image node identifier for ImageReference.
type ImageRef struct {
	Mode  ImageMode
	Value string
}

// LiteralImage builds a literal URL element.
func LiteralImage(url string) ImageRef {
	return ImageRef{Mode: ImageLiteral, Value: url}
}

// ReferenceImage builds an element pointing at an Image node.
func ReferenceImage(id string) ImageRef {
	return ImageRef{Mode: ImageReference, Value: id}
}

// IsReference reports whether the element denotes an Image node.
func (r ImageRef) IsReference() bool {
	return r.Mode == ImageReference
}

// imageValues flattens the list into its persisted string form.
func imageValues(refs []ImageRef) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Value)
	}
	return out
}

// imageEdges returns LINKS_IMAGE edges from source for every reference element.
func imageEdges(source string, refs []ImageRef) []Edge {
	var edges []Edge
	for _, ref := range refs {
		if ref.IsReference() {
			edges = append(edges, Edge{Source: source, Target: ref.Value, Type: RelLinksImage})
		}
	}
	return edges
}
