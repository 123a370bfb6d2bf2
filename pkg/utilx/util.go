package utilx

import (
	"github.com/google/uuid"
)

// GenerateUUID - generate a UUID, retrying until the random source succeeds.
func GenerateUUID() uuid.UUID {
	for {
		u, err := uuid.NewRandom()
		if err == nil {
			return u
		}
	}
}

// Ptr - return a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
