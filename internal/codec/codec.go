package codec

import (
	"fmt"
	"io"
)

// Encoder renders query results in a wire format
type Encoder interface {
	Encode(w io.Writer, v any) error
	Format() string
}

// ForFormat returns the encoder registered for a format name
func ForFormat(format string) (Encoder, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
