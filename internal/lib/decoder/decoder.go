package decoder

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gorilla/schema"
)

// URLDecoder fills structs from query strings and form values using `schema`
// tags. Unknown keys are ignored since browsers and proxies append their own.
type URLDecoder struct {
	dec *schema.Decoder
}

func New() *URLDecoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	dec.ZeroEmpty(true)
	return &URLDecoder{dec: dec}
}

func (d *URLDecoder) Decode(dst any, src url.Values) error {
	err := d.dec.Decode(dst, src)
	if err == nil {
		return nil
	}
	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		for key, fieldErr := range multiErr {
			var convErr schema.ConversionError
			return &ParamError{Key: key, Invalid: errors.As(fieldErr, &convErr), Err: fieldErr}
		}
	}
	return err
}

// ParamError reports the first offending parameter of a failed decode.
type ParamError struct {
	Key     string
	Invalid bool // value could not be converted to the field type
	Err     error
}

func (e *ParamError) Error() string {
	if e.Invalid {
		return fmt.Sprintf("parameter %q has an invalid value", e.Key)
	}
	return fmt.Sprintf("parameter %q: %v", e.Key, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
