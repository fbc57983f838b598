// Package structdata isolates the embedded JSON-LD block of a page and parses
// it into a Document.
package structdata

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// LinkedDataType is the script type marking a JSON-LD block.
const LinkedDataType = "application/ld+json"

// Sentinel reasons wrapped by ParseError.
var (
	ErrNoBlock     = errors.New("no structured-data block")
	ErrEmptyBlock  = errors.New("structured-data block is empty")
	ErrInvalidJSON = errors.New("structured-data block is not valid JSON")
	ErrEmptyArray  = errors.New("structured-data array is empty")
	ErrNotObject   = errors.New("structured data is not a JSON object")
)

// ParseError reports a page whose structured data could not be used. The
// caller skips the page.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse structured data: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is one parsed JSON-LD object.
type Document struct {
	root gjson.Result
}

// NewDocument wraps raw JSON, applying the same selection rules as Parse.
func NewDocument(raw string) (Document, error) {
	if strings.TrimSpace(raw) == "" {
		return Document{}, &ParseError{Err: ErrEmptyBlock}
	}
	if !gjson.Valid(raw) {
		return Document{}, &ParseError{Err: ErrInvalidJSON}
	}
	root := gjson.Parse(raw)
	if root.IsArray() {
		items := root.Array()
		if len(items) == 0 {
			return Document{}, &ParseError{Err: ErrEmptyArray}
		}
		root = items[0]
	}
	if !root.IsObject() {
		return Document{}, &ParseError{Err: ErrNotObject}
	}
	return Document{root: root}, nil
}

// Root returns the document's top-level object.
func (d Document) Root() gjson.Result {
	return d.root
}

// Lookup returns the value stored under key, matching the key literally.
func (d Document) Lookup(key string) (gjson.Result, bool) {
	return Field(d.root, key)
}

// Field finds key among obj's members without interpreting it as a gjson
// path, so keys such as "@type" are matched as written.
func Field(obj gjson.Result, key string) (gjson.Result, bool) {
	var (
		found gjson.Result
		ok    bool
	)
	if !obj.IsObject() {
		return found, false
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// Parse locates the first JSON-LD script in content and parses it.
func Parse(content []byte) (Document, error) {
	raw, err := Extract(content)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(raw)
}

// Extract returns the text of the first JSON-LD script in content.
func Extract(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", &ParseError{Err: fmt.Errorf("read html: %w", err)}
	}
	block := doc.Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isLinkedData(s.AttrOr("type", ""))
	}).First()
	if block.Length() == 0 {
		return "", &ParseError{Err: ErrNoBlock}
	}
	return block.Text(), nil
}

func isLinkedData(scriptType string) bool {
	mediaType, _, _ := strings.Cut(scriptType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), LinkedDataType)
}
