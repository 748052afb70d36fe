package tmx

import (
	"errors"
	"strings"
	"testing"

	tmxerrors "github.com/FocuswithJustin/tmxparser/core/errors"
)

func threeUnits() string {
	var b strings.Builder
	b.WriteString("<tmx><body>")
	for _, id := range []string{"1", "2", "3"} {
		b.WriteString(`<tu tuid="` + id + `"><tuv xml:lang="en"><seg>s` + id + `</seg></tuv></tu>`)
	}
	b.WriteString("</body></tmx>")
	return b.String()
}

func TestIteratorPullsInOrder(t *testing.T) {
	it := LoadString(threeUnits()).Iterator()
	defer it.Close()

	var ids []string
	for it.Next() {
		ids = append(ids, it.Unit().TUID)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got := strings.Join(ids, ","); got != "1,2,3" {
		t.Errorf("units = %s, want 1,2,3", got)
	}
	if it.Next() {
		t.Error("Next() after the end should stay false")
	}
	if it.Unit() != nil {
		t.Error("Unit() after the end should be nil")
	}
}

func TestIteratorCloseEarly(t *testing.T) {
	src := &countingOpener{data: threeUnits()}
	it := New("counted", src.open).Iterator()

	if !it.Next() {
		t.Fatalf("first Next() failed: %v", it.Err())
	}
	if it.Unit().TUID != "1" {
		t.Errorf("first unit = %q, want 1", it.Unit().TUID)
	}
	it.Close()
	it.Close()

	if it.Next() {
		t.Error("Next() after Close should be false")
	}
	if it.Err() != nil {
		t.Errorf("Err() after Close = %v, want nil", it.Err())
	}
	if src.opens != 1 || src.closes != 1 {
		t.Errorf("opens=%d closes=%d, want 1/1", src.opens, src.closes)
	}
}

func TestIteratorReportsError(t *testing.T) {
	in := `<body><tu tuid="1"></tu><tuv/></body>`
	it := LoadString(in).Iterator()
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("pulled %d units before the error, want 1", n)
	}
	if !errors.Is(it.Err(), tmxerrors.ErrMissingContext) {
		t.Errorf("Err() = %v, want ErrMissingContext", it.Err())
	}
}

func TestIteratorsAreIndependent(t *testing.T) {
	doc := LoadString(threeUnits())
	a := doc.Iterator()
	defer a.Close()
	b := doc.Iterator()
	defer b.Close()

	a.Next()
	a.Next()
	b.Next()
	if a.Unit().TUID != "2" || b.Unit().TUID != "1" {
		t.Errorf("a=%q b=%q, want 2 and 1", a.Unit().TUID, b.Unit().TUID)
	}
}
