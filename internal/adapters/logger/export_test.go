package logger

// ErrorEntry exposes the collected message and metadata of one chain link.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// CollectErrorEntries exports collectErrorEntries for testing.
func CollectErrorEntries(err error) []ErrorEntry {
	var res []ErrorEntry
	for _, e := range collectErrorEntries(err) {
		res = append(res, ErrorEntry{Message: e.message, Metadata: e.metadata})
	}
	return res
}
