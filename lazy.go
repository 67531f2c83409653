package slidedotnet

// Lazy defers a computation until its value is first requested and keeps the
// result until Reset is called. The zero value is not usable; create one with
// NewLazy or lazyOf.
//
// Lazy is not safe for concurrent use. A Presentation and everything reached
// from it is meant to be driven by one goroutine at a time.
type Lazy[T any] struct {
	produce func() (T, error)
	value   T
	created bool
}

// NewLazy returns a Lazy backed by produce. Failed productions are not cached:
// the next Value call runs produce again.
func NewLazy[T any](produce func() (T, error)) *Lazy[T] {
	return &Lazy[T]{produce: produce}
}

// lazyOf adapts a producer that cannot fail.
func lazyOf[T any](produce func() T) *Lazy[T] {
	return NewLazy(func() (T, error) { return produce(), nil })
}

// Value returns the cached value, producing it on first use.
func (l *Lazy[T]) Value() (T, error) {
	if l.created {
		return l.value, nil
	}
	v, err := l.produce()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.created = true
	return v, nil
}

// MustValue is Value for producers created with lazyOf.
func (l *Lazy[T]) MustValue() T {
	v, _ := l.Value()
	return v
}

// Reset discards the cached value so the next Value call recomputes it.
// Calling Reset before the first Value is a no-op.
func (l *Lazy[T]) Reset() {
	var zero T
	l.value = zero
	l.created = false
}

// IsValueCreated reports whether a value is currently cached.
func (l *Lazy[T]) IsValueCreated() bool {
	return l.created
}
