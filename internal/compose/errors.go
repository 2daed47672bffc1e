package compose

import "errors"

var (
	// ErrCyclicLinkReference is returned when the link_target graph of a
	// channel's layers contains a cycle. Detected before any backend
	// mutation.
	ErrCyclicLinkReference = errors.New("cyclic link reference")

	// ErrUnknownLayerType is recorded when a layer carries a type tag no
	// factory handles. The layer degrades to a pass-through; siblings
	// still compose.
	ErrUnknownLayerType = errors.New("unknown layer type")
)
