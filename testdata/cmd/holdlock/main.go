package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kei2100/linerotate"
)

// holdlock takes the lock file given as argument, reports it on stdout and
// keeps it until killed.
func main() {
	path := os.Args[1]
	if _, err := linerotate.AcquireLock(path, 0644); err != nil {
		panic(err)
	}
	fmt.Println("locked")
	time.Sleep(time.Minute)
}
