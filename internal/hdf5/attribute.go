package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/dtype"
	"github.com/robert-malhotra/go-treeseq/internal/message"
)

// Attribute is a small named value stored in the header of a group or
// dataset.
type Attribute struct {
	msg     *message.Attribute
	decoder dtype.Decoder
}

func (a *Attribute) Name() string {
	return a.msg.Name
}

// TypeName describes the stored element type, as Dataset.TypeName does.
func (a *Attribute) TypeName() string {
	if a.msg.Datatype == nil {
		return ""
	}
	return a.msg.Datatype.Name()
}

// IsScalar reports whether the attribute holds a single value rather than
// an array. Attributes without a dataspace are scalar.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace == nil || a.msg.Dataspace.IsScalar()
}

// Shape returns the array dimensions, or nil for a scalar.
func (a *Attribute) Shape() []uint64 {
	if a.IsScalar() {
		return nil
	}
	return a.msg.Dataspace.Dims
}

func (a *Attribute) numElements() uint64 {
	if a.IsScalar() {
		return 1
	}
	return a.msg.Dataspace.NumElements()
}

// Read decodes every element into dest, a pointer to a slice.
func (a *Attribute) Read(dest interface{}) error {
	if a.msg.Datatype == nil || a.msg.Data == nil {
		return fmt.Errorf("attribute %q has no stored value", a.msg.Name)
	}
	if err := a.decoder.Convert(a.msg.Datatype, a.msg.Data, a.numElements(), dest); err != nil {
		return fmt.Errorf("attribute %q: %w", a.msg.Name, err)
	}
	return nil
}

func (a *Attribute) ReadInt64() ([]int64, error) {
	var vals []int64
	if err := a.Read(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func (a *Attribute) ReadFloat64() ([]float64, error) {
	var vals []float64
	if err := a.Read(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func (a *Attribute) ReadString() ([]string, error) {
	var vals []string
	if err := a.Read(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// ReadScalarString returns the first string of the attribute, which is the
// whole value for the scalar strings the legacy formats store.
func (a *Attribute) ReadScalarString() (string, error) {
	vals, err := a.ReadString()
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("attribute %q is empty", a.msg.Name)
	}
	return vals[0], nil
}

// Value decodes the attribute into the natural Go type of its class:
// int64, uint64, float64 or string for scalars and a slice of the same for
// arrays.
func (a *Attribute) Value() (interface{}, error) {
	dt := a.msg.Datatype
	if dt == nil {
		return nil, fmt.Errorf("attribute %q has no datatype", a.msg.Name)
	}
	switch {
	case dt.Class == message.ClassFixedPoint && dt.Signed:
		return readValue[int64](a)
	case dt.Class == message.ClassFixedPoint:
		return readValue[uint64](a)
	case dt.Class == message.ClassFloatPoint:
		return readValue[float64](a)
	case dtype.IsString(dt):
		return readValue[string](a)
	}
	return nil, fmt.Errorf("attribute %q of type %s: %w", a.msg.Name, dt.Name(), ErrUnsupported)
}

func readValue[T any](a *Attribute) (interface{}, error) {
	var vals []T
	if err := a.Read(&vals); err != nil {
		return nil, err
	}
	if a.IsScalar() && len(vals) == 1 {
		return vals[0], nil
	}
	return vals, nil
}
