package tmx

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/FocuswithJustin/tmxparser/core/errors"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// saxHandler turns tokenizer events into listener actions. It decides which
// character data matters: every element pushes its own capture flag, nothing
// is inherited from the parent.
type saxHandler struct {
	l       *listener
	capture []bool
	pending strings.Builder
}

func newSAXHandler(l *listener) *saxHandler {
	return &saxHandler{l: l, capture: []bool{false}}
}

func (h *saxHandler) startElement(name string, attrs []xml.Attr) error {
	if err := h.flush(); err != nil {
		return err
	}
	entry := lookupTag(name)
	h.capture = append(h.capture, entry.capture)

	switch entry.action {
	case actionUnit:
		tuid, _ := getAttr(attrTUID, attrs)
		segtype, _ := getAttr(attrSegType, attrs)
		return h.l.unit(tuid, segtype)
	case actionVariant:
		return h.l.variant(locale(attrs))
	case actionProperty:
		name, _ := getAttr(attrType, attrs)
		return h.l.property(name)
	case actionPlaceholder:
		typ, _ := getAttr(attrType, attrs)
		return h.l.placeholder(typ)
	case actionBeginPair:
		i, _ := getAttr(attrPairID, attrs)
		return h.l.beginPair(i)
	case actionEndPair:
		i, _ := getAttr(attrPairID, attrs)
		return h.l.endPair(i)
	case actionHeader:
		return h.l.header(newHeader(attrs))
	}
	return nil
}

func (h *saxHandler) endElement(name string) error {
	if len(h.capture) > 1 {
		h.capture = h.capture[:len(h.capture)-1]
	}
	if err := h.flush(); err != nil {
		return err
	}
	return h.l.done(name)
}

func (h *saxHandler) characters(data []byte) {
	if h.capture[len(h.capture)-1] {
		h.pending.Write(data)
	}
}

// flush hands buffered character data to the listener as one text action.
func (h *saxHandler) flush() error {
	if h.pending.Len() == 0 {
		return nil
	}
	s := h.pending.String()
	h.pending.Reset()
	return h.l.text(s)
}

// parse drives dec to EOF, dispatching every token.
func (h *saxHandler) parse(dec *xml.Decoder, source string) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			pe := errors.NewParse("TMX", source, err.Error())
			pe.Line, pe.Column = dec.InputPos()
			pe.Err = err
			return pe
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err = h.startElement(t.Name.Local, t.Attr)
		case xml.EndElement:
			err = h.endElement(t.Name.Local)
		case xml.CharData:
			h.characters(t)
		}
		if err != nil {
			return err
		}
	}
}

// getAttr returns the value of the first attribute called name. Attributes in
// the XML namespace are matched with their "xml:" prefix.
func getAttr(name string, attrs []xml.Attr) (string, bool) {
	for _, a := range attrs {
		if qualifiedName(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

func qualifiedName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case xmlNamespace, "xml":
		return "xml:" + n.Local
	}
	return n.Space + ":" + n.Local
}

// locale reads xml:lang, falling back to the TMX 1.1 lang attribute.
// It returns nil when neither is present.
func locale(attrs []xml.Attr) *string {
	if v, ok := getAttr(attrLang, attrs); ok {
		return &v
	}
	if v, ok := getAttr(attrLegacy, attrs); ok {
		return &v
	}
	return nil
}
