// Package known maps common tag and attribute names to the symbolic
// identifiers of the node runtime (KnownElementName / KnownAttributeName).
//
// Lookups are case-insensitive. The vocabulary covers the HTML sectioning,
// text, inline, media and form elements, the React fragment, and the React
// Native core components.
package known

import (
	"maps"
	"slices"

	"golang.org/x/text/cases"
)

// Elements maps tag names to element symbols
var Elements = map[string]string{
	// HTML content sectioning
	"address": "Address",
	"article": "Article",
	"aside":   "Aside",
	"footer":  "Footer",
	"header":  "Header",
	"nav":     "Nav",
	"section": "Section",

	// HTML text sectioning
	"hgroup": "Hgroup",
	"h1":     "H1",
	"h2":     "H2",
	"h3":     "H3",
	"h4":     "H4",
	"h5":     "H5",
	"h6":     "H6",

	// HTML text content
	"main":       "Main",
	"div":        "Div",
	"span":       "Span",
	"p":          "P",
	"ol":         "Ol",
	"ul":         "Ul",
	"li":         "Li",
	"dl":         "Dl",
	"dt":         "Dt",
	"dd":         "Dd",
	"figure":     "Figure",
	"figcaption": "Figcaption",
	"hr":         "Hr",
	"pre":        "Pre",
	"blockquote": "Blockquote",

	// HTML inline text semantics
	"a":    "A",
	"b":    "Bold",
	"i":    "Italic",
	"u":    "Underline",
	"s":    "Strikethrough",
	"em":   "Emphasis",
	"mark": "Mark",
	"q":    "Quotation",
	"cite": "Citation",
	"code": "Code",
	"data": "Data",
	"time": "Time",
	"sub":  "Sub",
	"sup":  "Sup",
	"br":   "Br",
	"wbr":  "Wbr",

	// HTML media and links
	"img":   "Image",
	"area":  "Area",
	"map":   "Map",
	"audio": "Audio",
	"video": "Video",
	"track": "Track",

	// HTML forms
	"button":   "Button",
	"datalist": "Datalist",
	"fieldset": "Fieldset",
	"form":     "Form",
	"input":    "Input",
	"label":    "Label",
	"legend":   "Legend",
	"meter":    "Meter",
	"optgroup": "Optgroup",
	"option":   "Option",
	"output":   "Output",
	"progress": "Progress",
	"select":   "Select",
	"textarea": "Textarea",

	// React
	"fragment": "Fragment",

	// React Native basic components
	"view":       "View",
	"text":       "Text",
	"image":      "Image",
	"textinput":  "TextInput",
	"scrollview": "ScrollView",

	// React Native user interface
	"picker": "Picker",
	"slider": "Slider",
	"switch": "Switch",

	// React Native list views
	"flatlist":    "FlatList",
	"sectionlist": "SectionList",
}

// Attributes maps attribute names to attribute symbols
var Attributes = map[string]string{
	// HTML global attributes
	"accesskey":       "Accesskey",
	"class":           "Class",
	"contenteditable": "CntEditable",
	"contextmenu":     "Contextmenu",
	"dir":             "Dir",
	"draggable":       "Draggable",
	"dropzone":        "Dropzone",
	"hidden":          "Hidden",
	"id":              "Id",
	"lang":            "Lang",
	"spellcheck":      "Spellcheck",
	"src":             "Src",
	"style":           "Style",
	"tabindex":        "Tabindex",
	"title":           "Title",
	"translate":       "Translate",
}

// Table is an immutable case-folded lookup table. It is safe for
// concurrent use.
type Table struct {
	elements   map[string]string
	attributes map[string]string
}

var defaultTable = NewTable(Elements, Attributes)

// Default returns the table built from Elements and Attributes
func Default() *Table {
	return defaultTable
}

// NewTable builds a table from name → symbol maps
func NewTable(elements, attributes map[string]string) *Table {
	t := &Table{
		elements:   make(map[string]string, len(elements)),
		attributes: make(map[string]string, len(attributes)),
	}
	for name, sym := range elements {
		t.elements[fold(name)] = sym
	}
	for name, sym := range attributes {
		t.attributes[fold(name)] = sym
	}
	return t
}

// Merge returns a new table holding t's entries overridden by the given
// ones. An empty symbol removes a name.
func (t *Table) Merge(elements, attributes map[string]string) *Table {
	out := &Table{
		elements:   maps.Clone(t.elements),
		attributes: maps.Clone(t.attributes),
	}
	apply := func(dst, src map[string]string) {
		for name, sym := range src {
			if sym == "" {
				delete(dst, fold(name))
				continue
			}
			dst[fold(name)] = sym
		}
	}
	apply(out.elements, elements)
	apply(out.attributes, attributes)
	return out
}

// Element returns the symbol for a tag name
func (t *Table) Element(name string) (string, bool) {
	sym, ok := t.elements[fold(name)]
	return sym, ok
}

// Attribute returns the symbol for an attribute name
func (t *Table) Attribute(name string) (string, bool) {
	sym, ok := t.attributes[fold(name)]
	return sym, ok
}

// ElementNames returns the folded tag names in sorted order
func (t *Table) ElementNames() []string {
	return slices.Sorted(maps.Keys(t.elements))
}

// AttributeNames returns the folded attribute names in sorted order
func (t *Table) AttributeNames() []string {
	return slices.Sorted(maps.Keys(t.attributes))
}

// LookupElement resolves a tag name against the default table
func LookupElement(name string) (string, bool) {
	return defaultTable.Element(name)
}

// LookupAttribute resolves an attribute name against the default table
func LookupAttribute(name string) (string, bool) {
	return defaultTable.Attribute(name)
}

// fold case-folds name. A Caser keeps state between calls, so each lookup
// gets its own.
func fold(name string) string {
	return cases.Fold().String(name)
}
