package llm

import "errors"

// ErrAudioNotSupported is returned by Complete when the request carries an
// Audio attachment but the underlying backend accepts text only.
var ErrAudioNotSupported = errors.New("llm: provider does not support audio input")
