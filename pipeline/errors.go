package pipeline

import "errors"

// ErrInvalidGeometry is returned at construction when image dimensions do
// not divide evenly by chunk dimensions, or either is zero. NewPipeline
// wraps the underlying chunk.NewGrid failure with this sentinel so callers
// never need to import the chunk package directly.
var ErrInvalidGeometry = errors.New("pipeline: invalid geometry")

// ErrInvalidBuffer is returned by ProcessFrame when the supplied frame
// buffer's length does not match image_width*image_height*4.
var ErrInvalidBuffer = errors.New("pipeline: invalid buffer")

// ErrInvalidConfig is returned at construction when a threshold is out of
// [0, infinity) or disturbance_entry_threshold <= disturbance_exit_threshold.
var ErrInvalidConfig = errors.New("pipeline: invalid config")
