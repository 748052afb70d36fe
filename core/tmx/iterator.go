package tmx

import "iter"

// Iterator pulls units one at a time. The parse advances only when Next is
// called, so at most one finished unit is held between calls.
//
//	it := doc.Iterator()
//	defer it.Close()
//	for it.Next() {
//		use(it.Unit())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	next func() (*Unit, error, bool)
	stop func()
	unit *Unit
	err  error
	done bool
}

// Iterator starts a new pull-mode run over the document.
func (d *Document) Iterator() *Iterator {
	next, stop := iter.Pull2(d.Units())
	return &Iterator{next: next, stop: stop}
}

// Next advances to the next unit. It returns false at the end of the
// document, after an error, or after Close.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	u, err, ok := it.next()
	switch {
	case !ok:
		it.finish()
		return false
	case err != nil:
		it.err = err
		it.finish()
		return false
	}
	it.unit = u
	return true
}

// Unit returns the unit produced by the last successful Next.
func (it *Iterator) Unit() *Unit {
	return it.unit
}

// Err returns the error that ended the run, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close stops the run and releases the source. It is safe to call more than once.
func (it *Iterator) Close() {
	it.finish()
}

func (it *Iterator) finish() {
	it.done = true
	it.unit = nil
	it.stop()
}
