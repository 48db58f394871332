package codec

import (
	"github.com/goccy/go-json"
)

type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// JSON encodes values with goccy/go-json. HTML characters are not escaped so
// property values reach the store byte for byte.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}
