package clouddb

import "fmt"

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
)

// BackendType selects which RecordStore implementation backs the sync
// pathway.
type BackendType string

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend:
		return true
	}
	return false
}

func (t BackendType) String() string {
	return string(t)
}

// NewStore builds a RecordStore for the given backend type. The file
// backend needs dataPath; the memory backend ignores it.
func NewStore(backend BackendType, dataPath string) (RecordStore, error) {
	switch backend {
	case MemoryBackend:
		return NewMemoryStore(), nil
	case FileBackend:
		if dataPath == "" {
			return nil, fmt.Errorf("data path is required for the file backend")
		}
		return NewFileStore(dataPath)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backend)
	}
}
