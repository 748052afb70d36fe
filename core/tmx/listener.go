package tmx

import (
	"log/slog"
	"strings"

	"github.com/FocuswithJustin/tmxparser/core/errors"
)

// frame is one open content sink. tag is the element name that closes it.
// Variant frames receive text as new Text elements; all other frames
// accumulate into buf and hand the result to commit when they close.
type frame struct {
	tag     string
	variant *Variant
	buf     strings.Builder
	commit  func(string)
}

func (f *frame) receive(s string) {
	if f.variant != nil {
		f.variant.append(Text(s))
		return
	}
	f.buf.WriteString(s)
}

func (f *frame) close() {
	if f.commit != nil {
		f.commit(f.buf.String())
	}
}

// listener assembles units from domain actions. It is either idle (current
// is nil) or building exactly one unit.
type listener struct {
	emit     func(*Unit) error
	onHeader func(*Header) error
	strict   bool
	logger   *slog.Logger

	current *Unit
	hdr     *Header
	stack   []*frame
}

func newListener(emit func(*Unit) error) *listener {
	return &listener{
		emit:   emit,
		logger: slog.New(slog.DiscardHandler),
	}
}

func (l *listener) push(f *frame) {
	l.stack = append(l.stack, f)
}

func (l *listener) top() *frame {
	if len(l.stack) == 0 {
		return nil
	}
	return l.stack[len(l.stack)-1]
}

func (l *listener) pop() *frame {
	f := l.top()
	if f != nil {
		l.stack[len(l.stack)-1] = nil
		l.stack = l.stack[:len(l.stack)-1]
	}
	return f
}

// closeAll commits every open frame, innermost first.
func (l *listener) closeAll() {
	for f := l.pop(); f != nil; f = l.pop() {
		f.close()
	}
}

func (l *listener) unit(tuid, segtype string) error {
	if l.current != nil {
		return errors.NewStructure("unit", TagUnit, errors.ErrUnitAlreadyOpen)
	}
	l.closeAll()
	l.current = NewUnit(tuid, segtype)
	return nil
}

func (l *listener) header(h *Header) error {
	if l.current != nil {
		return errors.NewStructure("header", TagHeader, errors.ErrUnitAlreadyOpen)
	}
	l.hdr = h
	return nil
}

func (l *listener) variant(locale *string) error {
	if l.current == nil {
		return errors.NewStructure("variant", TagVariant, errors.ErrMissingContext)
	}
	v := NewVariant(locale)
	l.current.Variants = append(l.current.Variants, v)
	l.push(&frame{tag: TagVariant, variant: v})
	return nil
}

func (l *listener) property(name string) error {
	var props *Properties
	switch {
	case l.current != nil:
		props = l.current.Properties
	case l.hdr != nil:
		props = l.hdr.Properties
	default:
		return errors.NewStructure("property", TagProperty, errors.ErrMissingContext)
	}
	pv := &PropertyValue{}
	props.Set(name, pv)
	l.push(&frame{tag: TagProperty, commit: func(s string) { pv.Value = s }})
	return nil
}

// lastVariant is the variant inline elements attach to.
func (l *listener) lastVariant(action, tag string) (*Variant, error) {
	if l.current == nil || len(l.current.Variants) == 0 {
		return nil, errors.NewStructure(action, tag, errors.ErrMissingContext)
	}
	return l.current.Variants[len(l.current.Variants)-1], nil
}

func (l *listener) placeholder(typ string) error {
	v, err := l.lastVariant("placeholder", TagPlaceholder)
	if err != nil {
		return err
	}
	ph := &Placeholder{Type: typ}
	v.append(ph)
	l.push(&frame{tag: TagPlaceholder, commit: func(s string) { ph.Text = s }})
	return nil
}

func (l *listener) pair(kind PairKind, i string) error {
	p := &Pair{Kind: kind, I: i}
	action := "endPair"
	if kind == PairBegin {
		action = "beginPair"
	}
	v, err := l.lastVariant(action, p.Tag())
	if err != nil {
		return err
	}
	v.append(p)
	l.push(&frame{tag: p.Tag(), commit: func(s string) { p.Text = s }})
	return nil
}

func (l *listener) beginPair(i string) error {
	return l.pair(PairBegin, i)
}

func (l *listener) endPair(i string) error {
	return l.pair(PairEnd, i)
}

func (l *listener) text(s string) error {
	f := l.top()
	if f == nil {
		if l.strict {
			return errors.NewStructure("text", "", errors.ErrStrayText)
		}
		l.logger.Debug("dropped text outside any sink", "bytes", len(s))
		return nil
	}
	f.receive(s)
	return nil
}

func (l *listener) done(tag string) error {
	switch tag {
	case TagUnit:
		if l.current == nil {
			return l.stray(tag)
		}
		l.closeAll()
		u := l.current
		l.current = nil
		return l.emit(u)

	case TagHeader:
		if l.hdr == nil {
			return l.stray(tag)
		}
		l.closeAll()
		h := l.hdr
		l.hdr = nil
		if l.onHeader != nil {
			return l.onHeader(h)
		}
		return nil
	}

	if f := l.top(); f != nil && f.tag == tag {
		l.pop().close()
		return nil
	}
	if isSinkTag(tag) {
		return l.stray(tag)
	}
	return nil
}

func (l *listener) stray(tag string) error {
	if l.strict {
		return errors.NewStructure("done", tag, errors.ErrStrayClose)
	}
	l.logger.Debug("ignored closing tag", "tag", tag)
	return nil
}
