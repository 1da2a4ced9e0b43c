// Package file holds the platform specific pieces of linerotate: opening
// files so that they may be renamed while open, and exclusive advisory
// locks on an open file.
package file

import "github.com/pkg/errors"

// ErrLocked is returned by TryLock when another open file holds the lock.
var ErrLocked = errors.New("file is locked")
