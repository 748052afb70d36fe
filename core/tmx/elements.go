package tmx

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Unit is one translation unit (<tu>): a segment and its per-locale variants.
type Unit struct {
	// TUID is the tuid attribute, empty if absent.
	TUID string `json:"tuid"`

	// SegType is the segtype attribute (block, paragraph, sentence, phrase).
	SegType string `json:"segtype,omitempty"`

	// Properties holds the <prop> children in document order.
	Properties *Properties `json:"properties"`

	// Variants holds the <tuv> children in document order.
	Variants []*Variant `json:"variants"`
}

// NewUnit returns an empty unit.
func NewUnit(tuid, segtype string) *Unit {
	return &Unit{
		TUID:       tuid,
		SegType:    segtype,
		Properties: NewProperties(),
	}
}

// Variant returns the first variant whose locale equals lang, or nil.
func (u *Unit) Variant(lang string) *Variant {
	for _, v := range u.Variants {
		if v.Locale != nil && *v.Locale == lang {
			return v
		}
	}
	return nil
}

// Copy returns a deep copy of u. Nothing is shared with the original.
func (u *Unit) Copy() *Unit {
	if u == nil {
		return nil
	}
	c := &Unit{
		TUID:       u.TUID,
		SegType:    u.SegType,
		Properties: u.Properties.Copy(),
	}
	if u.Variants != nil {
		c.Variants = make([]*Variant, len(u.Variants))
		for i, v := range u.Variants {
			c.Variants[i] = v.Copy()
		}
	}
	return c
}

// Equal reports whether u and o describe the same unit. Properties are
// compared by position, so the same entries inserted in a different order
// make two units unequal.
func (u *Unit) Equal(o *Unit) bool {
	if u == nil || o == nil {
		return u == o
	}
	if u.TUID != o.TUID || u.SegType != o.SegType {
		return false
	}
	if !slices.EqualFunc(u.Variants, o.Variants, (*Variant).Equal) {
		return false
	}
	return u.Properties.Equal(o.Properties)
}

// Variant is one locale's rendition of the unit (<tuv>).
type Variant struct {
	// Locale is the xml:lang attribute; nil when the attribute was missing.
	Locale *string `json:"locale,omitempty"`

	// Elements interleaves Text runs with inline elements in document order.
	Elements []Element `json:"elements"`
}

// NewVariant returns a variant for locale. A nil locale means "absent".
func NewVariant(locale *string) *Variant {
	return &Variant{Locale: locale}
}

// Lang returns the locale, or "" when absent.
func (v *Variant) Lang() string {
	if v == nil || v.Locale == nil {
		return ""
	}
	return *v.Locale
}

// Text concatenates the plain-text runs, skipping inline markup.
func (v *Variant) Text() string {
	if v == nil {
		return ""
	}
	var n int
	for _, e := range v.Elements {
		if t, ok := e.(Text); ok {
			n += len(t)
		}
	}
	buf := make([]byte, 0, n)
	for _, e := range v.Elements {
		if t, ok := e.(Text); ok {
			buf = append(buf, t...)
		}
	}
	return string(buf)
}

func (v *Variant) append(e Element) {
	v.Elements = append(v.Elements, e)
}

// Copy returns a deep copy of v.
func (v *Variant) Copy() *Variant {
	if v == nil {
		return nil
	}
	c := &Variant{Locale: cloneString(v.Locale)}
	if v.Elements != nil {
		c.Elements = make([]Element, len(v.Elements))
		for i, e := range v.Elements {
			c.Elements[i] = e.clone()
		}
	}
	return c
}

// Equal reports whether both variants have the same locale and elements.
func (v *Variant) Equal(o *Variant) bool {
	if v == nil || o == nil {
		return v == o
	}
	if (v.Locale == nil) != (o.Locale == nil) {
		return false
	}
	if v.Locale != nil && *v.Locale != *o.Locale {
		return false
	}
	return slices.EqualFunc(v.Elements, o.Elements, Element.Equal)
}

// Element is a piece of segment content: a Text run, a *Placeholder or a *Pair.
// The set is closed.
type Element interface {
	// Equal reports deep equality with another element.
	Equal(Element) bool

	clone() Element
	isElement()
}

// Text is a run of plain segment text.
type Text string

func (Text) isElement() {}

func (t Text) clone() Element { return t }

// Equal implements Element.
func (t Text) Equal(o Element) bool {
	ot, ok := o.(Text)
	return ok && ot == t
}

// Placeholder is a <ph> inline element.
type Placeholder struct {
	Type string `json:"type"`
	Text string `json:"text"`

	// Start and Length are cursor fields for consumers; the parser never sets them.
	Start  *int `json:"start,omitempty"`
	Length *int `json:"length,omitempty"`
}

func (*Placeholder) isElement() {}

func (p *Placeholder) clone() Element {
	return &Placeholder{
		Type:   p.Type,
		Text:   p.Text,
		Start:  cloneInt(p.Start),
		Length: cloneInt(p.Length),
	}
}

// MarshalJSON tags the object with its element name.
func (p *Placeholder) MarshalJSON() ([]byte, error) {
	type alias Placeholder
	return json.Marshal(struct {
		Element string `json:"element"`
		*alias
	}{TagPlaceholder, (*alias)(p)})
}

// Equal implements Element.
func (p *Placeholder) Equal(o Element) bool {
	op, ok := o.(*Placeholder)
	if !ok || p == nil || op == nil {
		return ok && p == op
	}
	return p.Type == op.Type &&
		p.Text == op.Text &&
		equalInt(p.Start, op.Start) &&
		equalInt(p.Length, op.Length)
}

// PairKind distinguishes the two halves of a paired inline element.
type PairKind int

const (
	// PairBegin is a <bpt> element.
	PairBegin PairKind = iota
	// PairEnd is an <ept> element.
	PairEnd
)

func (k PairKind) String() string {
	if k == PairBegin {
		return "begin"
	}
	return "end"
}

// MarshalText implements encoding.TextMarshaler.
func (k PairKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Pair is a <bpt> or <ept> inline element. Begin and end halves are not
// matched against each other.
type Pair struct {
	Kind PairKind `json:"kind"`
	I    string   `json:"i"`
	Text string   `json:"text"`
}

func (*Pair) isElement() {}

func (p *Pair) clone() Element {
	c := *p
	return &c
}

// Tag returns the element name the pair was read from.
func (p *Pair) Tag() string {
	if p.Kind == PairBegin {
		return TagBeginPair
	}
	return TagEndPair
}

// MarshalJSON tags the object with its element name.
func (p *Pair) MarshalJSON() ([]byte, error) {
	type alias Pair
	return json.Marshal(struct {
		Element string `json:"element"`
		*alias
	}{p.Tag(), (*alias)(p)})
}

// Equal implements Element.
func (p *Pair) Equal(o Element) bool {
	op, ok := o.(*Pair)
	if !ok || p == nil || op == nil {
		return ok && p == op
	}
	return p.Kind == op.Kind && p.I == op.I && p.Text == op.Text
}

// PropertyValue is the text of one <prop> element.
type PropertyValue struct {
	Value string `json:"value"`
}

// Copy returns a copy of pv.
func (pv *PropertyValue) Copy() *PropertyValue {
	if pv == nil {
		return nil
	}
	return &PropertyValue{Value: pv.Value}
}

// Equal reports whether both values hold the same text.
func (pv *PropertyValue) Equal(o *PropertyValue) bool {
	if pv == nil || o == nil {
		return pv == o
	}
	return pv.Value == o.Value
}

// Properties is an insertion-ordered map of property name to value.
// Setting an existing name replaces its value and keeps its position.
type Properties struct {
	keys   []string
	values map[string]*PropertyValue
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]*PropertyValue)}
}

// Len returns the number of distinct names.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Get returns the value stored under name.
func (p *Properties) Get(name string) (*PropertyValue, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

// Value returns the text stored under name, or "".
func (p *Properties) Value(name string) string {
	if v, ok := p.Get(name); ok {
		return v.Value
	}
	return ""
}

// Set stores v under name.
func (p *Properties) Set(name string, v *PropertyValue) {
	if p.values == nil {
		p.values = make(map[string]*PropertyValue)
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = v
}

// Keys returns the names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.keys)
}

// All iterates entries in insertion order.
func (p *Properties) All() iter.Seq2[string, *PropertyValue] {
	return func(yield func(string, *PropertyValue) bool) {
		if p == nil {
			return
		}
		for _, k := range p.keys {
			if !yield(k, p.values[k]) {
				return
			}
		}
	}
}

// Copy returns a deep copy of p.
func (p *Properties) Copy() *Properties {
	c := NewProperties()
	for k, v := range p.All() {
		c.Set(k, v.Copy())
	}
	return c
}

// Equal compares entries position by position.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		pk, okey := p.keys[i], o.keys[i]
		if pk != okey {
			return false
		}
		if !p.values[pk].Equal(o.values[okey]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		var value string
		if v := p.values[k]; v != nil {
			value = v.Value
		}
		vb, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
