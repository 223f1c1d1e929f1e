package mqtt

import "errors"

// ErrNotConnected is returned when the transport has no broker connection.
var ErrNotConnected = errors.New("mqtt not connected")

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = errors.New("mqtt transport closed")
