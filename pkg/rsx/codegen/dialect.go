package codegen

import (
	"bytes"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	perrors "github.com/sambeau/rsx/pkg/rsx/errors"
)

// Templates holds one text/template per construction call. Each template
// receives a call value; the fields it may use are listed per template.
type Templates struct {
	Element         string `yaml:"element"`          // .Name
	ElementAttrs    string `yaml:"element_attrs"`    // .Name .Attrs
	ElementChildren string `yaml:"element_children"` // .Name .Children
	ElementFull     string `yaml:"element_full"`     // .Name .Attrs .Children

	KnownTag      string `yaml:"known_tag"`      // .Symbol .Name
	Tag           string `yaml:"tag"`            // .Name
	NamespacedTag string `yaml:"namespaced_tag"` // .Namespace .Local
	MemberTag     string `yaml:"member_tag"`     // .Parts

	KnownAttributeName      string `yaml:"known_attribute_name"`      // .Symbol .Name
	AttributeName           string `yaml:"attribute_name"`            // .Name
	NamespacedAttributeName string `yaml:"namespaced_attribute_name"` // .Namespace .Local

	Attributes string `yaml:"attributes"` // .Items
	Children   string `yaml:"children"`   // .Items

	Attribute string `yaml:"attribute"`  // .Name .Value
	Spread    string `yaml:"spread"`     // .Expr .Code
	Value     string `yaml:"value"`      // .Value
	CodeValue string `yaml:"code_value"` // .Expr .Code

	Boolean string `yaml:"boolean"` // .Value
	Number  string `yaml:"number"`  // .Number .Literal .Inf
	String  string `yaml:"string"`  // .Text

	TextChild string `yaml:"text_child"` // .Text
	CodeChild string `yaml:"code_child"` // .Expr .Code
}

// fields pairs every template with its YAML key
func (t *Templates) fields() []struct {
	key  string
	text *string
} {
	return []struct {
		key  string
		text *string
	}{
		{"element", &t.Element},
		{"element_attrs", &t.ElementAttrs},
		{"element_children", &t.ElementChildren},
		{"element_full", &t.ElementFull},
		{"known_tag", &t.KnownTag},
		{"tag", &t.Tag},
		{"namespaced_tag", &t.NamespacedTag},
		{"member_tag", &t.MemberTag},
		{"known_attribute_name", &t.KnownAttributeName},
		{"attribute_name", &t.AttributeName},
		{"namespaced_attribute_name", &t.NamespacedAttributeName},
		{"attributes", &t.Attributes},
		{"children", &t.Children},
		{"attribute", &t.Attribute},
		{"spread", &t.Spread},
		{"value", &t.Value},
		{"code_value", &t.CodeValue},
		{"boolean", &t.Boolean},
		{"number", &t.Number},
		{"string", &t.String},
		{"text_child", &t.TextChild},
		{"code_child", &t.CodeChild},
	}
}

// Dialect is a compiled set of call templates for one target API
type Dialect struct {
	Name      string    `yaml:"name"`
	Base      string    `yaml:"base,omitempty"`
	Fence     string    `yaml:"fence"`
	Quote     string    `yaml:"quote,omitempty"` // go, rust or js; empty means go
	Templates Templates `yaml:"templates"`

	tmpl *template.Template
}

// call is the data passed to every template
type call struct {
	Name      string
	Symbol    string
	Namespace string
	Local     string
	Parts     []string
	Items     []string
	Attrs     string
	Children  string
	Value     string
	Number    float64
	Literal   string
	Inf       bool
	Text      string
	Expr      string // braced
	Code      string // unbraced
}

// funcs returns the template functions. quote follows the dialect's
// string literal syntax.
func (d *Dialect) funcs() (template.FuncMap, error) {
	style := d.Quote
	if style == "" {
		style = QuoteGo
	}
	quote, ok := quoters[style]
	if !ok {
		return nil, perrors.New("CONFIG-0004", map[string]any{
			"Field":   "quote",
			"GoError": "unknown quote style '" + d.Quote + "' in dialect '" + d.Name + "' (want go, rust or js)",
		})
	}
	return template.FuncMap{
		"quote":  quote,
		"join":   strings.Join,
		"lower":  strings.ToLower,
		"member": jsMember,
	}, nil
}

const list = `{{range $i, $item := .Items}}{{if $i}} {{end}}{{$item}},{{end}}`

var builtins = map[string]Dialect{
	"dom": {
		Name:  "dom",
		Fence: "rust",
		Quote: QuoteRust,
		Templates: Templates{
			Element:         `DOMNode::from({{.Name}})`,
			ElementAttrs:    `DOMNode::from(({{.Name}}, DOMAttributes::from({{.Attrs}})))`,
			ElementChildren: `DOMNode::from(({{.Name}}, DOMChildren::from({{.Children}})))`,
			ElementFull:     `DOMNode::from(({{.Name}}, {{.Attrs}}, {{.Children}}))`,

			KnownTag:      `DOMTagName::from(KnownElementName::{{.Symbol}})`,
			Tag:           `DOMTagName::from({{quote .Name}})`,
			NamespacedTag: `DOMTagName::from(({{quote .Namespace}}, {{quote .Local}}))`,
			MemberTag:     `DOMTagName::from(box [{{range $i, $p := .Parts}}{{if $i}} {{end}}{{quote $p}},{{end}}])`,

			KnownAttributeName:      `DOMAttributeName::from(KnownAttributeName::{{.Symbol}})`,
			AttributeName:           `DOMAttributeName::from({{quote .Name}})`,
			NamespacedAttributeName: `DOMAttributeName::from(({{quote .Namespace}}, {{quote .Local}}))`,

			Attributes: `vec![` + list + `]`,
			Children:   `vec![` + list + `]`,

			Attribute: `DOMAttribute::from(({{.Name}}, {{.Value}}))`,
			Spread:    `DOMAttribute::from({{.Expr}})`,
			Value:     `DOMAttributeValue::from({{.Value}})`,
			CodeValue: `{{.Expr}}`,

			Boolean: `{{.Value}}`,
			Number:  `{{if .Inf}}{{if lt .Number 0.0}}-{{end}}f64::INFINITY{{else}}{{.Literal}}f64{{end}}`,
			String:  `{{quote .Text}}`,

			TextChild: `DOMNode::from({{quote .Text}})`,
			CodeChild: `DOMNode::from({{.Expr}})`,
		},
	},
	"react": {
		Name:  "react",
		Fence: "js",
		Quote: QuoteJS,
		Templates: Templates{
			Element:         `React.createElement({{.Name}}, null)`,
			ElementAttrs:    `React.createElement({{.Name}}, {{.Attrs}})`,
			ElementChildren: `React.createElement({{.Name}}, null, {{.Children}})`,
			ElementFull:     `React.createElement({{.Name}}, {{.Attrs}}, {{.Children}})`,

			KnownTag:      `{{quote (lower .Name)}}`,
			Tag:           `{{quote .Name}}`,
			NamespacedTag: `{{quote (printf "%s:%s" .Namespace .Local)}}`,
			MemberTag:     `{{member .Parts}}`,

			KnownAttributeName:      `{{quote .Name}}`,
			AttributeName:           `{{quote .Name}}`,
			NamespacedAttributeName: `{{quote (printf "%s:%s" .Namespace .Local)}}`,

			Attributes: `{ {{join .Items ", "}} }`,
			Children:   `{{join .Items ", "}}`,

			Attribute: `{{.Name}}: {{.Value}}`,
			Spread:    `...({{.Code}})`,
			Value:     `{{.Value}}`,
			CodeValue: `({{.Code}})`,

			Boolean: `{{.Value}}`,
			Number:  `{{if .Inf}}{{if lt .Number 0.0}}-{{end}}Infinity{{else}}{{.Literal}}{{end}}`,
			String:  `{{quote .Text}}`,

			TextChild: `{{quote .Text}}`,
			CodeChild: `({{.Code}})`,
		},
	},
}

// BuiltinNames returns the names of the built-in dialects in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builtin returns a compiled copy of the named built-in dialect
func Builtin(name string) (*Dialect, error) {
	b, ok := builtins[name]
	if !ok {
		data := map[string]any{"Name": name}
		if s := perrors.FindClosestMatch(name, BuiltinNames()); s != "" {
			data["Suggestion"] = s
		}
		return nil, perrors.New("CONFIG-0001", data)
	}
	d := b
	if err := d.compile(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DOM returns the default dialect. It panics if the built-in templates do
// not compile.
func DOM() *Dialect {
	d, err := Builtin("dom")
	if err != nil {
		panic(perrors.Internal("built-in dialect: " + err.Error()))
	}
	return d
}

// ParseDialect reads a dialect from YAML. When the document names a base
// dialect, templates it leaves out are taken from the base.
func ParseDialect(data []byte) (*Dialect, error) {
	var d Dialect
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, perrors.New("CONFIG-0004", map[string]any{"Field": "dialect", "GoError": err.Error()})
	}
	if d.Base == "" {
		if err := d.compile(); err != nil {
			return nil, err
		}
		return &d, nil
	}

	base, err := Builtin(d.Base)
	if err != nil {
		return nil, err
	}
	merged, err := base.Override(d.Templates)
	if err != nil {
		return nil, err
	}
	if d.Name != "" {
		merged.Name = d.Name
	}
	if d.Fence != "" {
		merged.Fence = d.Fence
	}
	merged.Base = d.Base
	if d.Quote != "" && d.Quote != merged.Quote {
		merged.Quote = d.Quote
		if err := merged.compile(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Override returns a new dialect with the non-empty templates of t
// replacing d's.
func (d *Dialect) Override(t Templates) (*Dialect, error) {
	out := &Dialect{Name: d.Name, Base: d.Base, Fence: d.Fence, Quote: d.Quote, Templates: d.Templates}
	dst := out.Templates.fields()
	for i, f := range t.fields() {
		if *f.text != "" {
			*dst[i].text = *f.text
		}
	}
	if err := out.compile(); err != nil {
		return nil, err
	}
	return out, nil
}

// compile parses every template. All of them are required.
func (d *Dialect) compile() error {
	if d.Name == "" {
		d.Name = "custom"
	}
	funcs, err := d.funcs()
	if err != nil {
		return err
	}
	root := template.New(d.Name).Funcs(funcs).Option("missingkey=error")
	for _, f := range d.Templates.fields() {
		if *f.text == "" {
			return perrors.New("CONFIG-0002", map[string]any{
				"Field":   f.key,
				"Dialect": d.Name,
				"GoError": "template is missing",
			})
		}
		if _, err := root.New(f.key).Parse(*f.text); err != nil {
			return perrors.New("CONFIG-0002", map[string]any{
				"Field":   f.key,
				"Dialect": d.Name,
				"GoError": err.Error(),
			})
		}
	}
	d.tmpl = root
	return nil
}

// render executes one template.
func (d *Dialect) render(key string, data call) (string, error) {
	var buf bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&buf, key, data); err != nil {
		return "", perrors.New("CONFIG-0002", map[string]any{
			"Field":   key,
			"Dialect": d.Name,
			"GoError": err.Error(),
		})
	}
	return buf.String(), nil
}
