package masonry

// ChangeKind identifies which operation produced a committed batch.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeUpdate
	ChangeRemove
	ChangeReplace
	ChangeUndo
	ChangeRedo
	ChangeFragment
)

// String returns the kind's name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	case ChangeRemove:
		return "remove"
	case ChangeReplace:
		return "replace"
	case ChangeUndo:
		return "undo"
	case ChangeRedo:
		return "redo"
	case ChangeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Change describes one committed edit batch.
type Change struct {
	// Revision is the document revision after the batch.
	Revision uint64

	// Kind is the operation that produced the batch.
	Kind ChangeKind

	// BlockIDs are the ids the operation targeted or created. Undo and
	// redo leave it empty.
	BlockIDs []string
}

// OnChange registers a listener invoked synchronously after every
// committed batch, outside the editor's write lock. The returned
// function unregisters it. Listener invocation order is unspecified.
func (e *Editor) OnChange(fn func(Change)) (cancel func()) {
	e.listenerMu.Lock()
	id := e.listenerSeq
	e.listenerSeq++
	e.listeners[id] = fn
	e.listenerMu.Unlock()

	return func() {
		e.listenerMu.Lock()
		delete(e.listeners, id)
		e.listenerMu.Unlock()
	}
}

// notify runs the registered listeners. The write lock must not be
// held; listeners may call back into the editor.
func (e *Editor) notify(c Change) {
	e.listenerMu.Lock()
	fns := make([]func(Change), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.listenerMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
