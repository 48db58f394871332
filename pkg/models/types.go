package models

import (
	"github.com/goccy/go-json"
)

// Undefined is the partition key value for documents stored without one.
// The bulk-import service represents it as an empty object.
type Undefined struct {
}

func (u Undefined) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}

func (u Undefined) String() string {
	return "undefined"
}

var None = Undefined{}

// Char is a single character value. It is written as a one character JSON
// string; a plain rune or byte is written as its code point number.
type Char rune

func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

func (c Char) String() string {
	return string(c)
}
