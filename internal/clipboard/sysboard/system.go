// Package sysboard implements the system clipboard.
// It uses golang.design/x/clipboard for text and PNG images and falls back to
// github.com/atotto/clipboard (pbcopy, xclip, xsel, wl-clipboard) for text
// when the native clipboard cannot be initialised, e.g. without cgo.
package sysboard

import (
	"runtime"
	"sync"

	textboard "github.com/atotto/clipboard"
	"gitlab.com/tozd/go/errors"
	native "golang.design/x/clipboard"

	"github.com/yiblet/clippy/internal/clipboard"
)

// textFallback is a text-only clipboard used when the native one is missing.
type textFallback struct {
	read      func() (string, error)
	write     func(string) error
	supported func() bool
}

func atottoFallback() textFallback {
	return textFallback{
		read:      textboard.ReadAll,
		write:     textboard.WriteAll,
		supported: func() bool { return !textboard.Unsupported },
	}
}

// SystemClipboard implements clipboard.Clipboard.
type SystemClipboard struct {
	once     sync.Once
	initErr  error
	fallback textFallback
}

var _ clipboard.Clipboard = (*SystemClipboard)(nil)

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{fallback: atottoFallback()}
}

func (s *SystemClipboard) init() error {
	s.once.Do(func() {
		s.initErr = native.Init()
	})
	return s.initErr
}

// IsSupported returns true if clipboard operations are supported on this system
func (s *SystemClipboard) IsSupported() bool {
	return s.init() == nil || s.fallback.supported()
}

// Read implements clipboard.Clipboard.
func (s *SystemClipboard) Read(format clipboard.Format) ([]byte, error) {
	if s.init() == nil {
		return native.Read(nativeFormat(format)), nil
	}
	if err := s.checkFallback(format); err != nil {
		return nil, err
	}

	text, err := s.fallback.read()
	if err != nil {
		return nil, errors.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []byte(text), nil
}

// Write implements clipboard.Clipboard.
func (s *SystemClipboard) Write(format clipboard.Format, data []byte) error {
	if s.init() == nil {
		native.Write(nativeFormat(format), data)
		return nil
	}
	if err := s.checkFallback(format); err != nil {
		return err
	}

	if err := s.fallback.write(string(data)); err != nil {
		return errors.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// checkFallback reports whether the text fallback can serve format.
func (s *SystemClipboard) checkFallback(format clipboard.Format) error {
	if format != clipboard.FormatText {
		return errors.WithDetails(clipboard.ErrUnsupported, "format", format.String(), "cause", s.initErr.Error())
	}
	if !s.fallback.supported() {
		return errors.WithDetails(clipboard.ErrUnsupported, "goos", runtime.GOOS, "cause", s.initErr.Error())
	}
	return nil
}

func nativeFormat(format clipboard.Format) native.Format {
	if format == clipboard.FormatImage {
		return native.FmtImage
	}
	return native.FmtText
}
