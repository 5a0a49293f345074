package uid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewTimeID returns a millisecond-timestamp identifier with a random
// suffix so two IDs minted in the same millisecond stay distinct.
// Player and auction IDs use this format and sort by creation time.
func NewTimeID() string {
	return fmt.Sprintf("%d-%08x", time.Now().UnixMilli(), randUint32())
}

// NewItemUID returns a unique identifier for a single inventory item
// instance. Distinct from NewTimeID so item UIDs are recognizable in
// payloads and logs.
func NewItemUID() string {
	return fmt.Sprintf("itm-%d-%08x", time.Now().UnixMilli(), randUint32())
}

func randUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms; fall back to
		// the clock so an ID is still produced.
		return uint32(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint32(b[:])
}
