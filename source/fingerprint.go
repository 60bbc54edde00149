package source

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// fingerprintSampleLen bounds how much of the document participates in
// the fingerprint. Documents inside the window hash whole; past it,
// hashing the byte length plus a sparse sample of the first kilobyte
// identifies a document cheaply enough to run on every open, at the
// cost of treating documents that differ only beyond the sample as
// identical, which session restore tolerates.
const (
	fingerprintSampleLen  = 1024
	fingerprintSampleStep = 16
)

// Fingerprint derives a stable content key for binary document data,
// used to index stored viewing sessions.
func Fingerprint(data []byte) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(data)))

	h, _ := blake2b.New256(nil)
	h.Write(buf[:])

	if len(data) <= fingerprintSampleLen {
		// Sampling only pays off past the window; short inputs hash
		// whole so same-length near-duplicates cannot collide.
		h.Write(data)
	} else {
		for i := 0; i < fingerprintSampleLen; i += fingerprintSampleStep {
			h.Write(data[i : i+1])
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// FingerprintURL keys a remote document by its source URL rather than
// its bytes, so a re-download is not needed to restore the session.
func FingerprintURL(url string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte("url:"))
	h.Write([]byte(url))
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}
