package http

import "errors"

// ErrObjectsDisabled is returned when the objects route is requested but the
// configured backend does not serve objects itself.
var ErrObjectsDisabled = errors.New("objects route disabled")
