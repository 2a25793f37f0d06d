package editblock

import "fmt"

// NoBlocksFoundError reports a reply with zero recognized blocks where the
// agent required at least one.
type NoBlocksFoundError struct{}

func (e *NoBlocksFoundError) Error() string {
	return "no edit blocks found in reply"
}

// PreFlightUnparsableError reports malformed block fencing. The whole parse
// fails; a half-parsed block is never returned.
type PreFlightUnparsableError struct {
	Reason string
}

func (e *PreFlightUnparsableError) Error() string {
	return fmt.Sprintf("unparsable edit blocks: %s", e.Reason)
}

// FileOutsideProjectError reports a block path that escapes the project root.
type FileOutsideProjectError struct {
	Path string
}

func (e *FileOutsideProjectError) Error() string {
	return fmt.Sprintf("file outside project root: %s", e.Path)
}

// ReadOnlyFileError reports an edit against a file registered read-only in
// the active context.
type ReadOnlyFileError struct {
	Path string
}

func (e *ReadOnlyFileError) Error() string {
	return fmt.Sprintf("cannot edit read-only file: %s", e.Path)
}

// SearchContentNotFoundError reports search content absent from the target
// file. The file is left unmodified.
type SearchContentNotFoundError struct {
	Path string
}

func (e *SearchContentNotFoundError) Error() string {
	return fmt.Sprintf("search content not found in %s", e.Path)
}
