package tmx

// Element names the parser acts on. Everything else is skipped.
const (
	TagUnit        = "tu"
	TagVariant     = "tuv"
	TagProperty    = "prop"
	TagSegment     = "seg"
	TagPlaceholder = "ph"
	TagBeginPair   = "bpt"
	TagEndPair     = "ept"
	TagHeader      = "header"
)

// Attribute names read from the recognized elements.
const (
	attrTUID    = "tuid"
	attrSegType = "segtype"
	attrLang    = "xml:lang"
	attrLegacy  = "lang" // TMX 1.1
	attrType    = "type"
	attrPairID  = "i"
)

// action is what the SAX adapter does when an element starts.
type action int

const (
	actionNone action = iota
	actionUnit
	actionVariant
	actionSegment
	actionProperty
	actionPlaceholder
	actionBeginPair
	actionEndPair
	actionHeader
)

type tagEntry struct {
	action  action
	capture bool // whether the element's own character data is kept
}

var tagTable = map[string]tagEntry{
	TagUnit:        {action: actionUnit},
	TagVariant:     {action: actionVariant},
	TagSegment:     {action: actionSegment, capture: true},
	TagProperty:    {action: actionProperty, capture: true},
	TagPlaceholder: {action: actionPlaceholder, capture: true},
	TagBeginPair:   {action: actionBeginPair, capture: true},
	TagEndPair:     {action: actionEndPair, capture: true},
	TagHeader:      {action: actionHeader},
}

func lookupTag(name string) tagEntry {
	return tagTable[name]
}

// isSinkTag reports whether elements named tag are pushed on the listener's
// sink stack.
func isSinkTag(tag string) bool {
	switch tag {
	case TagVariant, TagProperty, TagPlaceholder, TagBeginPair, TagEndPair:
		return true
	}
	return false
}
