package uuid

import (
	"github.com/gofrs/uuid/v5"
)

type UUID = uuid.UUID

var Nil = uuid.Nil

func NewV4() UUID {
	return uuid.Must(uuid.NewV4())
}

// NewString returns a random v4 id in its canonical text form.
func NewString() string {
	return NewV4().String()
}

func FromString(s string) (UUID, error) {
	return uuid.FromString(s)
}

func IsValid(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
