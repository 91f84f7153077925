package manifest

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMalformedEncoding indicates text that is not valid standard base64.
var ErrMalformedEncoding = errors.New("malformed base64 value")

// Encode returns the standard base64 text for raw. Empty input encodes to the
// empty string.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode reverses Encode. The empty string decodes to an empty byte slice.
func Decode(text string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return raw, nil
}
