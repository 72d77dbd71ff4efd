package avif

import (
	"errors"
	"fmt"
)

// Errors returned by the reformatting engine. Every failure matches
// ErrReformatFailed with errors.Is, plus the class that caused it.
var (
	ErrReformatFailed = errors.New("avif: reformat failed")
	ErrValidation     = errors.New("avif: unsupported format combination")
	ErrMissingBuffer  = errors.New("avif: missing buffer")
)

// ReformatError reports why a conversion was rejected. It is always
// returned before any destination byte is written.
type ReformatError struct {
	Op     string // public entry point, e.g. "ImageToRGB"
	Kind   error  // ErrValidation or ErrMissingBuffer
	Detail string
}

func (e *ReformatError) Error() string {
	if e.Op == "" {
		return "avif: " + e.Detail
	}
	return "avif: " + e.Op + ": " + e.Detail
}

// Unwrap exposes both the error class and ErrReformatFailed.
func (e *ReformatError) Unwrap() []error {
	return []error{e.Kind, ErrReformatFailed}
}

func invalidf(format string, args ...any) error {
	return &ReformatError{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

func missingf(format string, args ...any) error {
	return &ReformatError{Kind: ErrMissingBuffer, Detail: fmt.Sprintf(format, args...)}
}

// withOp stamps the entry point name on a ReformatError.
func withOp(op string, err error) error {
	var re *ReformatError
	if errors.As(err, &re) && re.Op == "" {
		re.Op = op
	}
	return err
}
