package common

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// --------------------------------------------------------------------------
// Positional arguments
// --------------------------------------------------------------------------

// Args holds the positional arguments of an Invocation.
// The concrete types of the values depend on the serializer (e.g. json.Number
// for numbers decoded by the JSON serializer), the typed accessors hide that.
type Args []any

// Len returns the number of positional arguments
func (a Args) Len() int {
	return len(a)
}

// At returns the raw value at position i
func (a Args) At(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: position %d (got %d arguments)", ErrMissingArgument, i, len(a))
	}
	return a[i], nil
}

// Int64 returns the value at position i converted to an int64
func (a Args) Int64(i int) (int64, error) {
	v, err := a.At(i)
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(v)
}

// Float64 returns the value at position i converted to a float64
func (a Args) Float64(i int) (float64, error) {
	v, err := a.At(i)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// String returns the value at position i converted to a string
func (a Args) String(i int) (string, error) {
	v, err := a.At(i)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// Bool returns the value at position i converted to a bool
func (a Args) Bool(i int) (bool, error) {
	v, err := a.At(i)
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(v)
}

// Decode decodes the value at position i into out (pointer to a struct, slice, map, ...)
func (a Args) Decode(i int, out any) error {
	v, err := a.At(i)
	if err != nil {
		return err
	}
	return DecodeValue(v, out)
}

// --------------------------------------------------------------------------
// Keyword arguments
// --------------------------------------------------------------------------

// Kwargs holds the keyword arguments of an Invocation.
type Kwargs map[string]any

// Has reports whether the keyword argument is present
func (k Kwargs) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// Get returns the raw value of a keyword argument
func (k Kwargs) Get(key string) (any, error) {
	v, ok := k[key]
	if !ok {
		return nil, fmt.Errorf("%w: keyword %q", ErrMissingArgument, key)
	}
	return v, nil
}

// Int64 returns the keyword argument converted to an int64
func (k Kwargs) Int64(key string) (int64, error) {
	v, err := k.Get(key)
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(v)
}

// Float64 returns the keyword argument converted to a float64
func (k Kwargs) Float64(key string) (float64, error) {
	v, err := k.Get(key)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// String returns the keyword argument converted to a string
func (k Kwargs) String(key string) (string, error) {
	v, err := k.Get(key)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// Decode decodes all keyword arguments into out, which must be a pointer to a
// struct or a map. Struct fields are matched by their json tag.
func (k Kwargs) Decode(out any) error {
	return DecodeValue(map[string]any(k), out)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// DecodeValue decodes an opaque value as produced by a serializer into out.
// Weak typing is enabled so json.Number and numeric strings convert to numbers.
func DecodeValue(in any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(in)
}
