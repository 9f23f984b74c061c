/*
Package state implements the hierarchical, path-addressable data container
owned by every engine.

A State is an ordered mapping from identifier keys to values. Plain
map[string]any values are promoted into nested States when assigned, so
dotted paths such as "training.epoch" reach into them. Mappings held inside
slices are left untouched, and a Keep mapping is always stored verbatim.

Entries may also be computed slots: a Computed pairs a getter with an
optional setter. Reading the entry calls the getter, writing calls the setter.

Paths never auto-create intermediate levels. Every segment but the last must
already resolve to a nested State, otherwise the operation fails with an error
matching domain.ErrNotFound.

A State is not safe for concurrent use.
*/
package state
