package sl651

import "errors"

var (
	ErrMalformedHead     = errors.New("malformed head")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrTruncatedElement  = errors.New("truncated element")
	ErrIncompleteMessage = errors.New("incomplete message")
	ErrTrailingBytes     = errors.New("trailing bytes after last element")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrValueOutOfRange   = errors.New("value out of range")
	ErrInvalidBCD        = errors.New("invalid BCD digit")
	ErrShortBuffer       = errors.New("short buffer")
)
