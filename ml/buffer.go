// buffer.go - Einweg-Uebergabe von Puffern an das Backend
// Dimensions- und Gewichtspuffer gehen beim Erzeugen von Input/Weight
// in den Besitz des Backends ueber. Danach bleibt nur eine Quittung.
package ml

import "fmt"

// Buffer wraps a slice whose ownership moves to a backend. The receiving
// backend calls Take exactly once; afterwards the Buffer only reports the
// length that was handed over.
type Buffer[T any] struct {
	data  []T
	n     int
	moved bool
}

// NewBuffer wraps data. The caller must not use data after the transfer.
func NewBuffer[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data, n: len(data)}
}

// Len is the number of elements, before or after the transfer.
func (b *Buffer[T]) Len() int {
	return b.n
}

// Moved reports whether the buffer has been taken by a backend.
func (b *Buffer[T]) Moved() bool {
	return b.moved
}

// Take transfers the slice to the caller. It panics if the buffer was already
// taken.
func (b *Buffer[T]) Take() []T {
	if b.moved {
		panic(fmt.Errorf("buffer of %d elements already transferred", b.n))
	}

	data := b.data
	b.data = nil
	b.moved = true
	return data
}

func (b *Buffer[T]) String() string {
	if b.moved {
		return fmt.Sprintf("buffer(%d, moved)", b.n)
	}
	return fmt.Sprintf("buffer(%d)", b.n)
}
