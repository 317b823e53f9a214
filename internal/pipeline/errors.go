package pipeline

import "errors"

var (
	// ErrNoDocuments is returned when the input directory holds no supported files.
	ErrNoDocuments = errors.New("no supported documents found")

	// ErrNoArtifacts is returned when a step that writes files has no output directory.
	ErrNoArtifacts = errors.New("artifact writer is not configured")
)
