// Package xml provides streaming XML checks and XPath selection over
// documents too large to load as a tree.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities, and Validate disables custom
//     entity expansion.
//   - The xmlquery stream parser uses Go's encoding/xml internally and
//     inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"

	"github.com/FocuswithJustin/tmxparser/core/encoding"
	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid    bool
	Elements int
	Errors   []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

// Validate checks that r holds well-formed XML. The input is read once and
// never buffered as a whole. I/O failures are reported as validation errors.
func Validate(r io.Reader) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(encoding.StripBOM(r))
	decoder.Strict = true
	decoder.CharsetReader = encoding.CharsetReader

	// XXE Protection (CWE-611)
	decoder.Entity = map[string]string{}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := decoder.InputPos()
			if se, ok := err.(*xml.SyntaxError); ok {
				line = se.Line
			}
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Column:  col,
				Message: err.Error(),
			})
			break
		}
		if _, ok := tok.(xml.StartElement); ok {
			result.Elements++
		}
	}

	if result.Valid && result.Elements == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Line:    1,
			Message: "document has no root element",
		})
	}
	return result
}

// ValidateBytes is Validate over an in-memory document.
func ValidateBytes(data []byte) ValidationResult {
	return Validate(bytes.NewReader(data))
}

// Node represents an element matched by Select.
type Node struct {
	node *xmlquery.Node
}

// Select streams r and calls fn for every element matched by path, an
// absolute XPath such as /tmx/body/tu. When filter is not empty it is
// evaluated with the matched element as context node and elements for which
// it is false, zero, empty or an empty node-set are skipped. Matched elements
// are released after fn returns. A non-nil error from fn stops the scan and
// is returned as is.
func Select(r io.Reader, path, filter string, fn func(*Node) error) error {
	if _, err := xpath.Compile(path); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "invalid xpath %q: %v", path, err)
	}
	var cond *xpath.Expr
	if filter != "" {
		var err error
		cond, err = xpath.Compile(filter)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "invalid filter %q: %v", filter, err)
		}
	}

	sp, err := xmlquery.CreateStreamParserWithOptions(encoding.StripBOM(r), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:        true,
			CharsetReader: encoding.CharsetReader,
		},
	}, path)
	if err != nil {
		return errors.Wrap(err, "creating stream parser")
	}

	for {
		n, err := sp.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			pe := errors.NewParse("XML", "", err.Error())
			pe.Err = err
			return pe
		}
		if cond != nil && !truthy(cond.Evaluate(xmlquery.CreateXPathNavigator(n))) {
			continue
		}
		if err := fn(&Node{node: n}); err != nil {
			return err
		}
	}
}

// Count returns how many elements Select would pass to its callback.
func Count(r io.Reader, path, filter string) (int, error) {
	n := 0
	err := Select(r, path, filter, func(*Node) error {
		n++
		return nil
	})
	return n, err
}

// truthy applies the XPath boolean() conversion to an evaluation result.
func truthy(v interface{}) bool {
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case *xpath.NodeIterator:
		return v.MoveNext()
	}
	return false
}

// Name returns the element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns all text content of the node and its descendants.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// Attributes returns all attributes of the node keyed by local name.
func (n *Node) Attributes() map[string]string {
	if n.node == nil {
		return nil
	}

	attrs := make(map[string]string)
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// OutputXML serializes the element and its children.
func (n *Node) OutputXML() string {
	if n.node == nil {
		return ""
	}
	return n.node.OutputXML(true)
}
