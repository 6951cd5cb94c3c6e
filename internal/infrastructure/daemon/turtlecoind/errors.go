package turtlecoind

import "errors"

var (
	// ErrMissingEndpoint ...
	ErrMissingEndpoint = errors.New("missing daemon endpoint")
	// ErrStatusNotOK is returned when the daemon answers with a status other
	// than "OK" in the response body.
	ErrStatusNotOK = errors.New("daemon status is not OK")
	// ErrMalformedResponse is returned when the response carries keys or
	// hashes that cannot be decoded.
	ErrMalformedResponse = errors.New("malformed daemon response")
)
