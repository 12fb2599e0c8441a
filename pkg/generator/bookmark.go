// Package generator synthesizes new document content from an abstract
// chapter tree: it clones formatting prototypes captured from the template,
// expands inline placeholder tokens into numbering and cross-reference field
// machinery bound to bookmarks, and splices the result into the template
// body.
package generator

import "fmt"

// BookmarkAllocator mints unique bookmark identities for one generation
// run. It is created per call and threaded through the engine, so concurrent
// generations never race and output is deterministic for a given input.
type BookmarkAllocator struct {
	next int
}

// NewBookmarkAllocator starts a fresh sequence.
func NewBookmarkAllocator() *BookmarkAllocator {
	return &BookmarkAllocator{next: 1}
}

// Next returns a fresh bookmark id and a name with the given prefix.
func (a *BookmarkAllocator) Next(prefix string) (int, string) {
	id := a.next
	a.next++
	return id, fmt.Sprintf("%s%d", prefix, id)
}

// NextID returns a fresh numeric bookmark id for bookmarks whose name is
// fixed externally (citation targets).
func (a *BookmarkAllocator) NextID() int {
	id := a.next
	a.next++
	return id
}

// ReferenceBookmarkName derives the bookmark name for a citation target
// deterministically from the reference id, so a REF field and the
// bibliography entry it points at agree without coordination.
func ReferenceBookmarkName(id int) string {
	return fmt.Sprintf("_RefNum_%d", id)
}
