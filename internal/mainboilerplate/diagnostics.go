// Package mainboilerplate contains shared boilerplate for linerotate's
// command. Each piece is narrowly scoped so main can pick what it needs.
package mainboilerplate

import (
	log "github.com/sirupsen/logrus"
)

// Version and BuildDate are populated at build time with -ldflags.
var (
	Version   = "development"
	BuildDate = "unknown"
)

// Must logs a fatal error, with |extra| as key/value fields, and exits
// non-zero if |err| is non-nil.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(f).Fatal(msg)
}
