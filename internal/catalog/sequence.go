// Package catalog holds the book-catalog domain helpers shared by the
// proxy handlers: the deterministic file-name generator and the storage
// path layout for uploaded book assets.
package catalog

import (
	"fmt"
	"unicode/utf16"
)

// GenerateSequence maps a title to a stable storage key of the form
// "book_<n>". It is the 31-multiplier polynomial hash over the title's
// UTF-16 code units with 32-bit signed wraparound, absolute value taken,
// so a title always lands on the same key. Collisions are possible and
// accepted. The empty title hashes to "book_0".
func GenerateSequence(title string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(title)) {
		hash = hash<<5 - hash + int32(unit)
	}
	if hash < 0 {
		// abs of math.MinInt32 does not exist in int32; widen first.
		return fmt.Sprintf("book_%d", -int64(hash))
	}
	return fmt.Sprintf("book_%d", hash)
}

// CoverPath is the object-store path for a book's cover image.
func CoverPath(title, ext string) string {
	return fmt.Sprintf("books/%s/cover.%s", title, ext)
}

// FilePath is the object-store path for a book's content file. The file
// name comes from GenerateSequence so re-uploads of the same title
// overwrite rather than accumulate.
func FilePath(title, ext string) string {
	return fmt.Sprintf("books/%s/%s.%s", title, GenerateSequence(title), ext)
}
