package wire

import (
	"bytes"

	"github.com/graphbulk/graphbulk.go/internal/codec"
)

// object writes a JSON object whose members keep the order they are added in.
// The first error sticks; later calls are no-ops.
type object struct {
	buf       *bytes.Buffer
	marshaler codec.Marshaler
	members   int
	field     string
	err       error
}

func newObject(buf *bytes.Buffer, m codec.Marshaler) *object {
	buf.WriteByte('{')
	return &object{buf: buf, marshaler: m}
}

func (o *object) key(name string) {
	if o.err != nil {
		return
	}
	if o.members > 0 {
		o.buf.WriteByte(',')
	}
	o.members++

	data, err := o.marshaler.Marshal(name)
	if err != nil {
		o.fail(name, err)
		return
	}
	o.buf.Write(data)
	o.buf.WriteByte(':')
}

// member writes name and the encoded value.
func (o *object) member(name string, value any) {
	o.key(name)
	if o.err != nil {
		return
	}

	data, err := o.marshaler.Marshal(value)
	if err != nil {
		o.fail(name, err)
		return
	}
	o.buf.Write(data)
}

// raw writes name followed by the output of fn, which must write one JSON value.
func (o *object) raw(name string, fn func(buf *bytes.Buffer) error) {
	o.key(name)
	if o.err != nil {
		return
	}
	if err := fn(o.buf); err != nil {
		o.fail(name, err)
	}
}

func (o *object) fail(field string, err error) {
	o.field = field
	o.err = err
}

func (o *object) close() {
	o.buf.WriteByte('}')
}
