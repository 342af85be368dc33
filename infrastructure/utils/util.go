package utils

import (
	"time"

	"github.com/google/uuid"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// NewID returns a random identifier for new rows.
func NewID() string {
	return uuid.NewString()
}
