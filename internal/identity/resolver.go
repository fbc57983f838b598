// Package identity assigns node identifiers according to a per-kind policy.
//
// Authors are content addressed: the identifier is a fixed prefix plus the
// author's name, so the same name on any number of pages yields one node.
// Every other kind receives a fresh random identifier on each occurrence, and
// two pages describing the same publisher therefore produce two Publisher
// nodes.
package identity

import (
	"fmt"

	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

const (
	// AuthorPrefix is prepended to author names to form their identifier.
	AuthorPrefix = "AUTHOR_"
	// AnonymousAuthorID is shared by every review without a named author.
	AnonymousAuthorID = "ANONYMOUS_AUTHOR"
	// AnonymousAuthorName is the display name stored on the sentinel node.
	AnonymousAuthorName = "Anonymous"
)

// IDGenerator produces random identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Strategy derives an identifier for one entity occurrence. key carries the
// content the strategy may address on; fresh strategies ignore it.
type Strategy interface {
	Identify(key string) (string, error)
}

// ContentAddressed derives the identifier from the key. An empty key maps to
// Fallback.
type ContentAddressed struct {
	Prefix   string
	Fallback string
}

// Identify implements Strategy.
func (c ContentAddressed) Identify(key string) (string, error) {
	if key == "" {
		if c.Fallback == "" {
			return "", fmt.Errorf("content addressed identity requires a key")
		}
		return c.Fallback, nil
	}
	return c.Prefix + key, nil
}

// Fresh returns a newly generated identifier on every call.
type Fresh struct {
	Gen IDGenerator
}

// Identify implements Strategy.
func (f Fresh) Identify(string) (string, error) {
	id, err := f.Gen.NewID()
	if err != nil {
		return "", fmt.Errorf("fresh identity: %w", err)
	}
	return id, nil
}

// Resolver looks up the strategy for a kind and applies it.
type Resolver struct {
	strategies map[recipe.Kind]Strategy
	fallback   Strategy
}

// NewResolver builds the default policy: Author is content addressed, every
// other kind is Fresh.
func NewResolver(gen IDGenerator) *Resolver {
	return &Resolver{
		strategies: map[recipe.Kind]Strategy{
			recipe.KindAuthor: ContentAddressed{Prefix: AuthorPrefix, Fallback: AnonymousAuthorID},
		},
		fallback: Fresh{Gen: gen},
	}
}

// Strategy returns the strategy applied to kind.
func (r *Resolver) Strategy(kind recipe.Kind) Strategy {
	if s, ok := r.strategies[kind]; ok {
		return s
	}
	return r.fallback
}

// Resolve returns the identifier for one occurrence of kind.
func (r *Resolver) Resolve(kind recipe.Kind, key string) (string, error) {
	id, err := r.Strategy(kind).Identify(key)
	if err != nil {
		return "", fmt.Errorf("resolve %s identity: %w", kind, err)
	}
	return id, nil
}

// Anonymous returns the sentinel author entity used for unattributed reviews.
func (r *Resolver) Anonymous() *recipe.Author {
	return &recipe.Author{ID: AnonymousAuthorID, Name: AnonymousAuthorName}
}
