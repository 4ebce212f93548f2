package domain

// FileRecord is the last known size and content digest of a dependency file
// that took part in a successful task completion.
type FileRecord struct {
	Name   string `json:"-"`
	Size   int64  `json:"size"`
	Digest string `json:"digest"`
}

// Matches reports whether two records describe the same file content.
func (r FileRecord) Matches(other FileRecord) bool {
	return r.Size == other.Size && r.Digest == other.Digest
}
