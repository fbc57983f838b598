// Package normalize maps a parsed JSON-LD Recipe document onto the typed
// entity graph. Each document key is handled in isolation: a malformed
// section is reported and dropped without affecting the rest of the page.
package normalize

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/JakeFAU/recipe-graph-crawler/internal/identity"
	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
	"github.com/JakeFAU/recipe-graph-crawler/internal/structdata"
)

// maxSectionDepth bounds HowToSection nesting inside recipeInstructions.
const maxSectionDepth = 4

// patch is the staged output of one key handler. It is committed only when
// the handler succeeds.
type patch struct {
	apply    func(r *recipe.Recipe)
	entities []recipe.Tagged
	dropped  int
}

func (p *patch) add(e recipe.Entity) {
	p.entities = append(p.entities, recipe.Tag(e))
}

type handler func(n *Normalizer, key string, v gjson.Result) (patch, error)

type field struct {
	key    string
	handle handler
}

// fields lists the recognized keys in the order sub-entities are discovered.
var fields = []field{
	{"name", scalarField(func(r *recipe.Recipe, s string) { r.Name = s })},
	{"url", scalarField(func(r *recipe.Recipe, s string) { r.URL = s })},
	{"headline", scalarField(func(r *recipe.Recipe, s string) { r.Headline = s })},
	{"dateModified", scalarField(func(r *recipe.Recipe, s string) { r.DateModified = s })},
	{"datePublished", scalarField(func(r *recipe.Recipe, s string) { r.DatePublished = s })},
	{"keywords", (*Normalizer).keywords},
	{"cookTime", scalarField(func(r *recipe.Recipe, s string) { r.CookTime = s })},
	{"totalTime", scalarField(func(r *recipe.Recipe, s string) { r.TotalTime = s })},
	{"description", scalarField(func(r *recipe.Recipe, s string) { r.Description = s })},
	{"recipeIngredient", (*Normalizer).ingredients},
	{"author", (*Normalizer).author},
	{"image", (*Normalizer).images},
	{"publisher", (*Normalizer).publisher},
	{"nutrition", (*Normalizer).nutrition},
	{"recipeInstructions", (*Normalizer).instructions},
	{"aggregateRating", (*Normalizer).aggregateRating},
	{"recipeYield", scalarField(func(r *recipe.Recipe, s string) { r.RecipeYield = s })},
	{"review", (*Normalizer).reviews},
	{"video", (*Normalizer).video},
}

// Keys returns the document keys the normalizer understands.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Normalizer turns documents into Results, resolving identifiers as it goes.
type Normalizer struct {
	ids *identity.Resolver
}

// New constructs a Normalizer.
func New(ids *identity.Resolver) *Normalizer {
	return &Normalizer{ids: ids}
}

// Normalize maps doc. It fails only when the Recipe itself cannot be
// assigned an identifier; every per-key problem lands in Result.Fields.
func (n *Normalizer) Normalize(doc structdata.Document) (Result, error) {
	id, err := n.ids.Resolve(recipe.KindRecipe, "")
	if err != nil {
		return Result{}, fmt.Errorf("normalize recipe: %w", err)
	}
	res := Result{
		Recipe: &recipe.Recipe{ID: id},
		Fields: make([]FieldResult, 0, len(fields)),
	}
	for _, f := range fields {
		v, ok := doc.Lookup(f.key)
		if !ok || !present(v) {
			res.Fields = append(res.Fields, FieldResult{Key: f.key, Status: StatusAbsent})
			continue
		}
		p, herr := f.handle(n, f.key, v)
		if herr != nil {
			res.Fields = append(res.Fields, FieldResult{Key: f.key, Status: StatusInvalid, Err: herr})
			continue
		}
		if p.apply != nil {
			p.apply(res.Recipe)
		}
		res.Entities = append(res.Entities, p.entities...)
		res.Fields = append(res.Fields, FieldResult{Key: f.key, Status: StatusParsed, Dropped: p.dropped})
	}
	return res, nil
}

func scalarField(set func(*recipe.Recipe, string)) handler {
	return func(_ *Normalizer, key string, v gjson.Result) (patch, error) {
		s, ok := scalar(v)
		if !ok {
			return patch{}, &ShapeError{Key: key, Want: "string", Got: describe(v)}
		}
		return patch{apply: func(r *recipe.Recipe) { set(r, s) }}, nil
	}
}

func (n *Normalizer) keywords(key string, v gjson.Result) (patch, error) {
	var raw []string
	switch {
	case v.Type == gjson.String:
		raw = strings.Split(v.String(), ",")
	case v.IsArray():
		for _, item := range v.Array() {
			if s, ok := scalar(item); ok {
				raw = append(raw, s)
			}
		}
	default:
		return patch{}, &ShapeError{Key: key, Want: "comma-delimited string", Got: describe(v)}
	}
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return patch{apply: func(r *recipe.Recipe) { r.Keywords = keywords }}, nil
}

func (n *Normalizer) ingredients(key string, v gjson.Result) (patch, error) {
	if !v.IsArray() && v.Type != gjson.String {
		return patch{}, &ShapeError{Key: key, Want: "list of strings", Got: describe(v)}
	}
	var p patch
	var items []string
	for _, item := range asList(v) {
		if item.Type != gjson.String {
			p.dropped++
			continue
		}
		items = append(items, item.String())
	}
	p.apply = func(r *recipe.Recipe) { r.RecipeIngredient = items }
	return p, nil
}

// resolveAuthor builds the Author for a named author value. It returns nil
// when v carries no name.
func (n *Normalizer) resolveAuthor(v gjson.Result) (*recipe.Author, error) {
	head, ok := first(v)
	if !ok {
		return nil, nil
	}
	var name, url string
	switch {
	case head.IsObject():
		name, url = text(head, "name"), text(head, "url")
	case head.Type == gjson.String:
		name = head.String()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	id, err := n.ids.Resolve(recipe.KindAuthor, name)
	if err != nil {
		return nil, err
	}
	return &recipe.Author{ID: id, Name: name, URL: url}, nil
}

func (n *Normalizer) author(key string, v gjson.Result) (patch, error) {
	a, err := n.resolveAuthor(v)
	if err != nil {
		return patch{}, err
	}
	if a == nil {
		return patch{}, &ShapeError{Key: key, Want: "object with a name", Got: describe(v)}
	}
	var p patch
	p.add(a)
	p.apply = func(r *recipe.Recipe) { r.Author = a.ID }
	return p, nil
}

// imageRef classifies one image element. Object elements are materialized
// into p as Image entities.
func (n *Normalizer) imageRef(p *patch, v gjson.Result) (*recipe.ImageRef, error) {
	switch {
	case v.Type == gjson.String:
		if strings.TrimSpace(v.String()) == "" {
			return nil, nil
		}
		ref := recipe.LiteralImage(v.String())
		return &ref, nil
	case v.IsObject():
		id, err := n.ids.Resolve(recipe.KindImage, "")
		if err != nil {
			return nil, err
		}
		img := &recipe.Image{
			ID:          id,
			URL:         text(v, "url"),
			Description: text(v, "description"),
		}
		if h, ok := structdata.Field(v, "height"); ok {
			img.Height = integer(h)
		}
		if w, ok := structdata.Field(v, "width"); ok {
			img.Width = integer(w)
		}
		p.add(img)
		ref := recipe.ReferenceImage(id)
		return &ref, nil
	default:
		return nil, nil
	}
}

func (n *Normalizer) images(_ string, v gjson.Result) (patch, error) {
	var p patch
	var refs []recipe.ImageRef
	for _, item := range asList(v) {
		ref, err := n.imageRef(&p, item)
		if err != nil {
			return patch{}, err
		}
		if ref == nil {
			p.dropped++
			continue
		}
		refs = append(refs, *ref)
	}
	p.apply = func(r *recipe.Recipe) { r.Image = refs }
	return p, nil
}

func (n *Normalizer) publisher(key string, v gjson.Result) (patch, error) {
	obj, ok := object(v)
	if !ok {
		return patch{}, &ShapeError{Key: key, Want: "object", Got: describe(v)}
	}
	id, err := n.ids.Resolve(recipe.KindPublisher, "")
	if err != nil {
		return patch{}, err
	}
	pub := &recipe.Publisher{ID: id, Name: text(obj, "name"), URL: text(obj, "url")}
	if logo, found := structdata.Field(obj, "logo"); found {
		pub.Logo = urlOf(logo)
	}
	var p patch
	p.add(pub)
	p.apply = func(r *recipe.Recipe) { r.Publisher = id }
	return p, nil
}

func (n *Normalizer) nutrition(key string, v gjson.Result) (patch, error) {
	obj, ok := object(v)
	if !ok {
		return patch{}, &ShapeError{Key: key, Want: "object", Got: describe(v)}
	}
	id, err := n.ids.Resolve(recipe.KindNutrition, "")
	if err != nil {
		return patch{}, err
	}
	nut := &recipe.Nutrition{
		ID:                  id,
		ServingSize:         text(obj, "servingSize"),
		Calories:            text(obj, "calories"),
		FatContent:          text(obj, "fatContent"),
		SaturatedFatContent: text(obj, "saturatedFatContent"),
		CarbohydrateContent: text(obj, "carbohydrateContent"),
		FiberContent:        text(obj, "fiberContent"),
		SugarContent:        text(obj, "sugarContent"),
		ProteinContent:      text(obj, "proteinContent"),
		CholesterolContent:  text(obj, "cholesterolContent"),
		SodiumContent:       text(obj, "sodiumContent"),
	}
	var p patch
	p.add(nut)
	p.apply = func(r *recipe.Recipe) { r.Nutrition = id }
	return p, nil
}

func (n *Normalizer) instructions(key string, v gjson.Result) (patch, error) {
	if !v.IsArray() && !v.IsObject() && v.Type != gjson.String {
		return patch{}, &ShapeError{Key: key, Want: "list of steps", Got: describe(v)}
	}
	var p patch
	var ids []string
	if err := n.collectSteps(&p, &ids, asList(v), 0); err != nil {
		return patch{}, err
	}
	p.apply = func(r *recipe.Recipe) { r.RecipeInstructions = ids }
	return p, nil
}

// collectSteps flattens HowToStep objects, bare strings and HowToSection
// groups into Instruction entities.
func (n *Normalizer) collectSteps(p *patch, ids *[]string, items []gjson.Result, depth int) error {
	for _, item := range items {
		if item.IsObject() && depth < maxSectionDepth {
			if nested, ok := structdata.Field(item, "itemListElement"); ok && hasType(item, "HowToSection") {
				if err := n.collectSteps(p, ids, asList(nested), depth+1); err != nil {
					return err
				}
				continue
			}
		}
		step, err := n.step(p, item)
		if err != nil {
			return err
		}
		if step == nil {
			p.dropped++
			continue
		}
		p.add(step)
		*ids = append(*ids, step.ID)
	}
	return nil
}

func (n *Normalizer) step(p *patch, item gjson.Result) (*recipe.Instruction, error) {
	var step recipe.Instruction
	switch {
	case item.IsObject():
		step.Name = text(item, "name")
		step.Text = text(item, "text")
		step.URL = text(item, "url")
		if img, ok := structdata.Field(item, "image"); ok {
			if head, found := first(img); found {
				ref, err := n.imageRef(p, head)
				if err != nil {
					return nil, err
				}
				step.Image = ref
			}
		}
	case item.Type == gjson.String && strings.TrimSpace(item.String()) != "":
		step.Text = item.String()
	default:
		return nil, nil
	}
	id, err := n.ids.Resolve(recipe.KindInstruction, "")
	if err != nil {
		return nil, err
	}
	step.ID = id
	return &step, nil
}

func (n *Normalizer) aggregateRating(key string, v gjson.Result) (patch, error) {
	obj, ok := object(v)
	if !ok {
		return patch{}, &ShapeError{Key: key, Want: "object", Got: describe(v)}
	}
	var rating *float64
	if rv, found := structdata.Field(obj, "ratingValue"); found {
		rating = number(rv)
	}
	var count *int64
	if rc, found := structdata.Field(obj, "reviewCount"); found {
		count = integer(rc)
	} else if rc, found := structdata.Field(obj, "ratingCount"); found {
		count = integer(rc)
	}
	if rating == nil && count == nil {
		return patch{}, &ShapeError{Key: key, Want: "ratingValue or reviewCount", Got: "neither"}
	}
	return patch{apply: func(r *recipe.Recipe) {
		r.RatingValue = rating
		r.ReviewCount = count
	}}, nil
}

func (n *Normalizer) reviews(key string, v gjson.Result) (patch, error) {
	if !v.IsArray() && !v.IsObject() {
		return patch{}, &ShapeError{Key: key, Want: "list of reviews", Got: describe(v)}
	}
	var p patch
	var ids []string
	for _, item := range asList(v) {
		if !item.IsObject() {
			p.dropped++
			continue
		}
		rev, err := n.review(&p, item)
		if err != nil {
			return patch{}, err
		}
		ids = append(ids, rev.ID)
	}
	p.apply = func(r *recipe.Recipe) { r.Reviews = ids }
	return p, nil
}

func (n *Normalizer) review(p *patch, item gjson.Result) (*recipe.Review, error) {
	var author *recipe.Author
	if av, ok := structdata.Field(item, "author"); ok {
		a, err := n.resolveAuthor(av)
		if err != nil {
			return nil, err
		}
		author = a
	}
	if author == nil {
		author = n.ids.Anonymous()
	}
	id, err := n.ids.Resolve(recipe.KindReview, "")
	if err != nil {
		return nil, err
	}
	rev := &recipe.Review{
		ID:            id,
		Author:        author.ID,
		ReviewBody:    text(item, "reviewBody"),
		DatePublished: text(item, "datePublished"),
	}
	if rating, ok := structdata.Field(item, "reviewRating"); ok {
		if obj, isObj := object(rating); isObj {
			rev.RatingValue = text(obj, "ratingValue")
			rev.WorstRating = text(obj, "worstRating")
			rev.BestRating = text(obj, "bestRating")
		}
	}
	p.add(author)
	p.add(rev)
	return rev, nil
}

func (n *Normalizer) video(key string, v gjson.Result) (patch, error) {
	obj, ok := object(v)
	if !ok {
		return patch{}, &ShapeError{Key: key, Want: "object", Got: describe(v)}
	}
	id, err := n.ids.Resolve(recipe.KindVideo, "")
	if err != nil {
		return patch{}, err
	}
	vid := &recipe.Video{
		ID:           id,
		Name:         text(obj, "name"),
		Description:  text(obj, "description"),
		Duration:     text(obj, "duration"),
		ThumbnailURL: text(obj, "thumbnailUrl"),
		ContentURL:   text(obj, "contentUrl"),
		UploadDate:   text(obj, "uploadDate"),
	}
	var p patch
	p.add(vid)
	p.apply = func(r *recipe.Recipe) { r.Video = id }
	return p, nil
}
