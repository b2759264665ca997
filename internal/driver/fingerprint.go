package driver

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// Digest identifies the content of a set of module trees.
type Digest [sha256.Size]byte

// Fingerprint hashes the trees at paths in order: H(H(t1) || H(t2) ...).
// The watcher relinks only when it changes.
func Fingerprint(paths []string) (Digest, error) {
	outer := sha256.New()
	for _, p := range paths {
		inner := sha256.New()
		fd, err := os.Open(p)
		if err != nil {
			return Digest{}, fmt.Errorf("fingerprint %s: %w", p, err)
		}
		_, err = io.Copy(inner, fd)
		fd.Close()
		if err != nil {
			return Digest{}, fmt.Errorf("fingerprint %s: %w", p, err)
		}
		_, _ = outer.Write(inner.Sum(nil))
	}
	var d Digest
	copy(d[:], outer.Sum(nil))
	return d, nil
}
