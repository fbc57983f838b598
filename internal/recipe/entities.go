package recipe

// Recipe is the root entity, one per crawled page. Reference fields hold
// node identifiers; an empty reference means the section was absent.
type Recipe struct {
	ID                 string
	Name               string
	URL                string
	Headline           string
	Author             string
	Image              []ImageRef
	DatePublished      string
	DateModified       string
	Publisher          string
	Keywords           []string
	CookTime           string
	TotalTime          string
	Description        string
	RecipeIngredient   []string
	RecipeInstructions []string
	Nutrition          string
	RatingValue        *float64
	ReviewCount        *int64
	Reviews            []string
	RecipeYield        string
	Video              string
}

// Identifier implements Entity.
func (r *Recipe) Identifier() string { return r.ID }

// Kind implements Entity.
func (r *Recipe) Kind() Kind { return KindRecipe }

// Properties implements Entity.
func (r *Recipe) Properties() map[string]any {
	return newProps(r.ID).
		str("name", r.Name).
		str("url", r.URL).
		str("headline", r.Headline).
		str("author", r.Author).
		strs("image", imageValues(r.Image)).
		str("datePublished", r.DatePublished).
		str("dateModified", r.DateModified).
		str("publisher", r.Publisher).
		strs("keywords", r.Keywords).
		str("cookTime", r.CookTime).
		str("totalTime", r.TotalTime).
		str("description", r.Description).
		strs("recipeIngredient", r.RecipeIngredient).
		strs("recipeInstruction", r.RecipeInstructions).
		str("nutrition", r.Nutrition).
		number("ratingValue", r.RatingValue).
		integer("reviewCount", r.ReviewCount).
		strs("review", r.Reviews).
		str("recipeYield", r.RecipeYield).
		str("video", r.Video)
}

// Relationships returns every edge the recipe implies, in a stable order.
func (r *Recipe) Relationships() []Edge {
	var edges []Edge
	add := func(target string, typ RelationshipType) {
		if target != "" {
			edges = append(edges, Edge{Source: r.ID, Target: target, Type: typ})
		}
	}
	add(r.Author, RelAuthoredBy)
	add(r.Publisher, RelPublishedBy)
	edges = append(edges, imageEdges(r.ID, r.Image)...)
	add(r.Nutrition, RelNutrition)
	for _, id := range r.RecipeInstructions {
		add(id, RelInstruction)
	}
	for _, id := range r.Reviews {
		add(id, RelHasReview)
	}
	add(r.Video, RelLinksVideo)
	return edges
}

// Author is identified by name.
type Author struct {
	ID   string
	Name string
	URL  string
}

// Identifier implements Entity.
func (a *Author) Identifier() string { return a.ID }

// Kind implements Entity.
func (a *Author) Kind() Kind { return KindAuthor }

// Properties implements Entity.
func (a *Author) Properties() map[string]any {
	return newProps(a.ID).str("name", a.Name).str("url", a.URL)
}

// Publisher carries the flattened logo URL.
type Publisher struct {
	ID   string
	Name string
	URL  string
	Logo string
}

// Identifier implements Entity.
func (p *Publisher) Identifier() string { return p.ID }

// Kind implements Entity.
func (p *Publisher) Kind() Kind { return KindPublisher }

// Properties implements Entity.
func (p *Publisher) Properties() map[string]any {
	return newProps(p.ID).str("name", p.Name).str("url", p.URL).str("logo", p.Logo)
}

// Nutrition holds free-text nutrition facts.
type Nutrition struct {
	ID                  string
	ServingSize         string
	Calories            string
	FatContent          string
	SaturatedFatContent string
	CarbohydrateContent string
	FiberContent        string
	SugarContent        string
	ProteinContent      string
	CholesterolContent  string
	SodiumContent       string
}

// Identifier implements Entity.
func (n *Nutrition) Identifier() string { return n.ID }

// Kind implements Entity.
func (n *Nutrition) Kind() Kind { return KindNutrition }

// Properties implements Entity.
func (n *Nutrition) Properties() map[string]any {
	return newProps(n.ID).
		str("servingSize", n.ServingSize).
		str("calories", n.Calories).
		str("fatContent", n.FatContent).
		str("saturatedFatContent", n.SaturatedFatContent).
		str("carbohydrateContent", n.CarbohydrateContent).
		str("fiberContent", n.FiberContent).
		str("sugarContent", n.SugarContent).
		str("proteinContent", n.ProteinContent).
		str("cholesterolContent", n.CholesterolContent).
		str("sodiumContent", n.SodiumContent)
}

// Instruction is one recipe step.
type Instruction struct {
	ID    string
	Name  string
	Text  string
	URL   string
	Image *ImageRef
}

// Identifier implements Entity.
func (i *Instruction) Identifier() string { return i.ID }

// Kind implements Entity.
func (i *Instruction) Kind() Kind { return KindInstruction }

// Properties implements Entity.
func (i *Instruction) Properties() map[string]any {
	p := newProps(i.ID).str("name", i.Name).str("text", i.Text).str("url", i.URL)
	if i.Image != nil {
		p.str("image", i.Image.Value)
	}
	return p
}

// Relationships links the step to its image node, if it has one.
func (i *Instruction) Relationships() []Edge {
	if i.Image == nil {
		return nil
	}
	return imageEdges(i.ID, []ImageRef{*i.Image})
}

// Review references its Author by identifier.
type Review struct {
	ID            string
	Author        string
	RatingValue   string
	WorstRating   string
	BestRating    string
	ReviewBody    string
	DatePublished string
}

// Identifier implements Entity.
func (r *Review) Identifier() string { return r.ID }

// Kind implements Entity.
func (r *Review) Kind() Kind { return KindReview }

// Properties implements Entity.
func (r *Review) Properties() map[string]any {
	return newProps(r.ID).
		str("author", r.Author).
		str("ratingValue", r.RatingValue).
		str("worstRating", r.WorstRating).
		str("bestRating", r.BestRating).
		str("reviewBody", r.ReviewBody).
		str("datePublished", r.DatePublished)
}

// Relationships links the review to its author.
func (r *Review) Relationships() []Edge {
	if r.Author == "" {
		return nil
	}
	return []Edge{{Source: r.ID, Target: r.Author, Type: RelAuthoredBy}}
}

// Video describes an embedded recipe video.
type Video struct {
	ID           string
	Name         string
	Description  string
	Duration     string
	ThumbnailURL string
	ContentURL   string
	UploadDate   string
}

// Identifier implements Entity.
func (v *Video) Identifier() string { return v.ID }

// Kind implements Entity.
func (v *Video) Kind() Kind { return KindVideo }

// Properties implements Entity.
func (v *Video) Properties() map[string]any {
	return newProps(v.ID).
		str("name", v.Name).
		str("description", v.Description).
		str("duration", v.Duration).
		str("thumbnailUrl", v.ThumbnailURL).
		str("contentUrl", v.ContentURL).
		str("uploadDate", v.UploadDate)
}

// Image is a materialized ImageObject.
type Image struct {
	ID          string
	URL         string
	Height      *int64
	Width       *int64
	Description string
}

// Identifier implements Entity.
func (i *Image) Identifier() string { return i.ID }

// Kind implements Entity.
func (i *Image) Kind() Kind { return KindImage }

// Properties implements Entity.
func (i *Image) Properties() map[string]any {
	return newProps(i.ID).
		str("url", i.URL).
		integer("height", i.Height).
		integer("width", i.Width).
		str("description", i.Description)
}

// Linker is implemented by entities that imply outgoing edges.
type Linker interface {
	Relationships() []Edge
}
