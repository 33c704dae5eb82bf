package indexer

import (
	"fmt"
	"time"
)

// FileError marks one file as failed without affecting the rest of its chunk.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ChunkTimeoutError fails every file in a chunk whose workers did not finish
// within the configured timeout. The run continues with remaining chunks.
type ChunkTimeoutError struct {
	Chunk   int
	Files   []string
	Timeout time.Duration
}

func (e *ChunkTimeoutError) Error() string {
	return fmt.Sprintf("chunk %d (%d files) timed out after %s", e.Chunk, len(e.Files), e.Timeout)
}
