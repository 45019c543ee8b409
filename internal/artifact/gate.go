package artifact

// IsStageComplete reports whether the artifact at path is present and, when
// minSize > 0, at least minSize bytes long.
func IsStageComplete(s Store, path string, minSize int64) bool {
	size, err := s.Stat(path)
	if err != nil {
		return false
	}
	return minSize <= 0 || size >= minSize
}

// EnsureFresh applies the staleness policy for size-checked artifacts: an
// artifact that exists but is smaller than minSize is deleted. It returns
// true when the stage is complete and false when it has to run again.
func EnsureFresh(s Store, path string, minSize int64) (bool, error) {
	if IsStageComplete(s, path, minSize) {
		return true, nil
	}
	if Exists(s, path) {
		if err := s.Invalidate(path); err != nil {
			return false, err
		}
	}
	return false, nil
}
