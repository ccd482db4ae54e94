// Package idset provides a small integer-set wrapper around
// golang.org/x/tools/container/intsets, used by value.Object's
// prototype-chain walks as a cycle guard over object identities instead of the map[*Object]struct{} the teacher's
// getSlotRecurse (object.go) builds fresh on every call.
package idset

import "golang.org/x/tools/container/intsets"

// Set is a sparse set of object/link identifiers.
type Set struct {
	s intsets.Sparse
}

// New returns an empty Set.
func New() *Set { return &Set{} }

// Add inserts id, reporting whether it was not already present.
func (s *Set) Add(id int) bool { return s.s.Insert(id) }

// Has reports whether id is present.
func (s *Set) Has(id int) bool { return s.s.Has(id) }

// Remove deletes id, reporting whether it was present.
func (s *Set) Remove(id int) bool { return s.s.Remove(id) }

// Len reports the number of elements.
func (s *Set) Len() int { return s.s.Len() }
