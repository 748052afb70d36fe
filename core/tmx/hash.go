package tmx

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a hex BLAKE3 digest of the unit's content. Units that
// are Equal have the same fingerprint.
func Fingerprint(u *Unit) string {
	h := blake3.New()
	writeUnit(h, u)
	return hex.EncodeToString(h.Sum(nil))
}

// Element kinds in the fingerprint stream.
const (
	fpText byte = iota + 1
	fpPlaceholder
	fpBeginPair
	fpEndPair
	fpNoLocale
	fpLocale
)

func writeUnit(h hash.Hash, u *Unit) {
	writeString(h, u.TUID)
	writeString(h, u.SegType)

	writeLen(h, u.Properties.Len())
	for k, v := range u.Properties.All() {
		writeString(h, k)
		var value string
		if v != nil {
			value = v.Value
		}
		writeString(h, value)
	}

	writeLen(h, len(u.Variants))
	for _, v := range u.Variants {
		if v.Locale == nil {
			h.Write([]byte{fpNoLocale})
		} else {
			h.Write([]byte{fpLocale})
			writeString(h, *v.Locale)
		}
		writeLen(h, len(v.Elements))
		for _, e := range v.Elements {
			writeElement(h, e)
		}
	}
}

func writeElement(h hash.Hash, e Element) {
	switch e := e.(type) {
	case Text:
		h.Write([]byte{fpText})
		writeString(h, string(e))
	case *Placeholder:
		h.Write([]byte{fpPlaceholder})
		writeString(h, e.Type)
		writeString(h, e.Text)
		writeOptInt(h, e.Start)
		writeOptInt(h, e.Length)
	case *Pair:
		kind := fpBeginPair
		if e.Kind == PairEnd {
			kind = fpEndPair
		}
		h.Write([]byte{kind})
		writeString(h, e.I)
		writeString(h, e.Text)
	}
}

func writeLen(h hash.Hash, n int) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}

func writeString(h hash.Hash, s string) {
	writeLen(h, len(s))
	h.Write([]byte(s))
}

func writeOptInt(h hash.Hash, n *int) {
	if n == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{1})
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutVarint(buf[:], int64(*n))])
}
