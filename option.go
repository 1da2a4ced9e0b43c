package linerotate

import (
	"os"

	"github.com/spf13/afero"
)

type option struct {
	Config
	fs     afero.Fs
	policy PolicyFunc
}

// OptionFunc let you change linerotate.Writer behavior.
type OptionFunc func(o *option)

// Default values
const (
	DefaultPermission     = 0644
	DefaultLockFile       = "lock"
	DefaultOutputFile     = "output"
	DefaultMaxFileSize    = 1024 * 1024
	DefaultMaxOutputFiles = 10
)

func (o *option) apply(opts ...OptionFunc) {
	o.Config = Config{
		LockFileName:   DefaultLockFile,
		OutputFileName: DefaultOutputFile,
		MaxFileSize:    DefaultMaxFileSize,
		MaxOutputFiles: DefaultMaxOutputFiles,
		Permission:     DefaultPermission,
		LockPolicy:     LockRequired,
	}
	for _, fn := range opts {
		fn(o)
	}
	if o.Permission == 0 {
		o.Permission = DefaultPermission
	}
	if o.policy == nil {
		o.policy = SizeBasedPolicy(o.MaxFileSize)
	}
}

func WithPermission(v os.FileMode) OptionFunc {
	return func(o *option) {
		o.Permission = v
	}
}

func WithLockFile(name string) OptionFunc {
	return func(o *option) {
		o.LockFileName = name
	}
}

func WithOutputFile(name string) OptionFunc {
	return func(o *option) {
		o.OutputFileName = name
	}
}

// WithMaxFileSize sets the rotation threshold in bytes.
func WithMaxFileSize(v int64) OptionFunc {
	return func(o *option) {
		o.MaxFileSize = v
	}
}

// WithMaxOutputFiles sets the number of generations retained, the active
// file included.
func WithMaxOutputFiles(v int) OptionFunc {
	return func(o *option) {
		o.MaxOutputFiles = v
	}
}

func WithLockPolicy(v LockPolicy) OptionFunc {
	return func(o *option) {
		o.LockPolicy = v
	}
}

// WithConfig replaces every configuration value at once.
func WithConfig(c Config) OptionFunc {
	return func(o *option) {
		o.Config = c
	}
}

// WithFs sets the filesystem holding the output file chain.
// The lock file always lives on the OS filesystem.
func WithFs(fs afero.Fs) OptionFunc {
	return func(o *option) {
		o.fs = fs
	}
}

// WithPolicyFunc overrides the size based rotation trigger.
func WithPolicyFunc(f PolicyFunc) OptionFunc {
	return func(o *option) {
		o.policy = f
	}
}
