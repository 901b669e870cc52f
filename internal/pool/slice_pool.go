package pool

import (
	"reflect"
	"sync"
)

// slicePools holds one *sync.Pool per distinct element type T that GetSlice
// is instantiated with, created lazily on first use. A generic function
// can't itself own a package-level sync.Pool per instantiation, so the
// pools are keyed by reflect.Type instead.
var slicePools sync.Map // map[reflect.Type]*sync.Pool

// GetSlice retrieves a zero-length-extended slice of T, sized to size,
// from a pool shared by every GetSlice[T] call site. It exists so a
// reader decoding many chunks of the same element type (ReadNumeric,
// ReadNumericRange) can reuse one scratch backing array per chunk instead
// of allocating a fresh one every call. The returned cleanup function
// must be called (typically via defer) to return the backing array to
// the pool; callers must not retain the slice past that call, since its
// backing array may be handed to an unrelated caller afterward.
func GetSlice[T any](size int) ([]T, func()) {
	var zero T

	key := reflect.TypeOf(zero)

	v, _ := slicePools.LoadOrStore(key, &sync.Pool{
		New: func() any { s := make([]T, 0); return &s },
	})

	p, _ := v.(*sync.Pool)
	ptr, _ := p.Get().(*[]T)
	*ptr = resize(*ptr, size)

	return *ptr, func() { p.Put(ptr) }
}

// resize returns a slice of the given length, reusing s's backing array
// when it has enough capacity and allocating a new one otherwise.
func resize[T any](s []T, size int) []T {
	if cap(s) < size {
		return make([]T, size)
	}

	return s[:size]
}
