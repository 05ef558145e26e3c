package lockfree

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrUninitialized reports use of a OnceCell before TryInit succeeded.
	ErrUninitialized = errors.New("lockfree: accessed before initialization")
	// ErrAlreadyInitialized reports a second TryInit.
	ErrAlreadyInitialized = errors.New("lockfree: already initialized")
)

// OnceCell holds a value that is initialised exactly once and read many
// times afterwards. The zero value is an uninitialised cell.
//
// Lifecycle: uninitialized -> initialized (once) -> used. Reads before
// initialisation are reported as ErrUninitialized rather than returning a
// zero value.
type OnceCell[T any] struct {
	v atomic.Pointer[T]
}

// TryInit stores the value built by init. Only the first successful call
// wins; later calls return ErrAlreadyInitialized and discard their value.
func (c *OnceCell[T]) TryInit(init func() *T) error {
	if c.v.Load() != nil {
		return ErrAlreadyInitialized
	}
	v := init()
	if v == nil {
		return errors.New("lockfree: init returned nil")
	}
	if !c.v.CompareAndSwap(nil, v) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get returns the stored value or ErrUninitialized.
func (c *OnceCell[T]) Get() (*T, error) {
	v := c.v.Load()
	if v == nil {
		return nil, ErrUninitialized
	}
	return v, nil
}

// MustGet is Get for callers that treat use-before-init as fatal.
func (c *OnceCell[T]) MustGet() *T {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// IsInitialized reports whether TryInit has succeeded.
func (c *OnceCell[T]) IsInitialized() bool {
	return c.v.Load() != nil
}
