package domain

import "github.com/google/uuid"

// ID is a UUID in its canonical string form.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (vo ID) String() string {
	return string(vo)
}

func (vo ID) IsZero() bool {
	return vo == ""
}

// IsValid reports whether the id parses as a UUID.
func (vo ID) IsValid() bool {
	_, err := uuid.Parse(string(vo))
	return err == nil
}

// Version counts writes to an aggregate and starts at 1.
type Version int

const InitialVersion Version = 1

func (v Version) Next() Version {
	return v + 1
}

type Name string

func (vo Name) String() string {
	return string(vo)
}

type DisplayName string
