// Package clipboard defines the clipboard abstraction shared by the daemon,
// the CLI and the picker.
package clipboard

import (
	"gitlab.com/tozd/go/errors"
)

// Format is the payload type of a clipboard read or write.
type Format int

const (
	FormatText Format = iota
	FormatImage
)

func (f Format) String() string {
	if f == FormatImage {
		return "image/png"
	}
	return "text/plain"
}

// ErrUnsupported is returned when the clipboard cannot handle a format on
// this system.
var ErrUnsupported = errors.Base("clipboard format not supported")

// Clipboard reads and writes the system clipboard.
//
// Read returns nil data and no error when the clipboard holds nothing in the
// requested format. Image data is PNG encoded.
type Clipboard interface {
	Read(format Format) ([]byte, error)
	Write(format Format, data []byte) error
	IsSupported() bool
}
