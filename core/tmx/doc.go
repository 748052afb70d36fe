// Package tmx reads Translation Memory eXchange (TMX) documents one
// translation unit at a time.
//
// The parser never holds more than the unit under construction: the XML
// tokenizer feeds a SAX-style adapter, the adapter turns elements into
// actions, and a listener assembles each <tu> and hands it to the caller as
// soon as its closing tag is read.
//
//	doc := tmx.Open("memory.tmx")
//	for unit, err := range doc.Units() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(unit.TUID, unit.Variant("de-DE").Text())
//	}
//
// Recognized elements are tu, tuv, prop, seg, ph, bpt, ept and header;
// everything else is skipped. Character data is kept only inside seg, prop,
// ph, bpt and ept.
//
// Malformed XML fails with *errors.ParseError. Elements in impossible
// places (a tuv outside a tu, a nested tu) fail with *errors.StructureError.
// Stray closing tags and text with nowhere to go are ignored unless the
// Document is created WithStrict(true). A callback may return ErrStop to end
// a run early without an error.
package tmx
