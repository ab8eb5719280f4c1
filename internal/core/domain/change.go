package domain

// ChangeType represents the type of corpus file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed or renamed-away file.
	ChangeDeleted
)

// String returns a short label for logs.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is one corpus change observed while watching.
type FileChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the absolute path of the affected file.
	Path string

	// RelativePath is the path relative to the corpus root.
	RelativePath string
}
