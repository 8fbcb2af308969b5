package generator

import "os"

// entry is the terminal classification of a working-copy entry. Every entry
// is exactly one of excludedEntry, rawEntry, templatedFile or
// directoryEntry, and each one has a single legal action.
type entry interface {
	isEntry()
}

// excludedEntry is deleted from the working copy.
type excludedEntry struct{}

// rawEntry is left as-is for the copier. Raw directories are registered so
// the copier treats them as one opaque unit. A raw file whose header turned
// it raw carries its header-stripped, unrendered content.
type rawEntry struct {
	dir     bool
	content []byte
	mode    os.FileMode
}

// templatedFile is rewritten in place with its rendered content.
type templatedFile struct {
	content []byte
	mode    os.FileMode
}

// directoryEntry is recursed into.
type directoryEntry struct{}

func (excludedEntry) isEntry()  {}
func (rawEntry) isEntry()       {}
func (templatedFile) isEntry()  {}
func (directoryEntry) isEntry() {}

// kind returns a short label for logging.
func kind(e entry) string {
	switch e.(type) {
	case excludedEntry:
		return "excluded"
	case rawEntry:
		return "raw"
	case templatedFile:
		return "templated"
	case directoryEntry:
		return "directory"
	default:
		return "unknown"
	}
}
