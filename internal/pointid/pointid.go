// Package pointid derives stable vector-store point identifiers.
package pointid

import (
	"fmt"

	"github.com/google/uuid"
)

// New derives the point id for a chunk as a name-based UUID (version 5) over
// the URL namespace and the "<source_id>:<index>" name. The same
// (source, index) pair always yields the same id, so re-ingesting a source
// overwrites its existing points instead of duplicating them.
func New(sourceID string, index int) string {
	name := fmt.Sprintf("%s:%d", sourceID, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// ForChunks returns the ids for all n chunks of a source, in chunk order.
func ForChunks(sourceID string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = New(sourceID, i)
	}
	return ids
}
