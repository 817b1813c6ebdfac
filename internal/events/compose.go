package events

import "time"

// CompositionStart is emitted when the pipeline starts composing a schema.
type CompositionStart struct {
	Federated bool
	// Fragments counts the model fragments plus the custom fragment.
	Fragments int
}

// CompositionFinish is emitted after the pipeline returns.
type CompositionFinish struct {
	Federated bool
	// Empty is set when no schema was produced because there was nothing to
	// compose.
	Empty    bool
	Types    int
	Err      error
	Duration time.Duration
}

// StageStart is emitted before a pipeline stage runs.
type StageStart struct {
	Stage string
}

// StageFinish is emitted after a pipeline stage completes.
type StageFinish struct {
	Stage    string
	Err      error
	Duration time.Duration
}

// ArtifactWritten is emitted after the schema artifact was written.
type ArtifactWritten struct {
	Path  string
	Bytes int
}

// ArtifactFailed is emitted when the schema artifact could not be written.
type ArtifactFailed struct {
	Path string
	Err  error
}
