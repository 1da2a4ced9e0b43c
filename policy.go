package linerotate

// FileState is what a PolicyFunc sees of the active output file.
type FileState struct {
	// Size is the on-disk size at startup plus bytes appended since, or the
	// bytes appended since the last rotation.
	Size int64
}

// PolicyFunc decides, after each record, whether the output file rotates.
type PolicyFunc func(fileState FileState) bool

// NeedRotate calls f.
func (f PolicyFunc) NeedRotate(fileState FileState) bool {
	return f(fileState)
}

// SizeBasedPolicy rotates once the file holds at least size bytes. The size
// is a lower bound: a single record may carry the file past it.
func SizeBasedPolicy(size int64) PolicyFunc {
	return func(fileState FileState) bool {
		return fileState.Size >= size
	}
}
