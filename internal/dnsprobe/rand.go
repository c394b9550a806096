package dnsprobe

import (
	"encoding/base32"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// randPool guards a package-level rand.Rand the same way the teacher seeds
// proxy.go's randSrc once at package init and shares it across goroutines
// under a mutex, rather than minting a new source per call.
var randPool = struct {
	sync.Mutex
	src *rand.Rand
}{src: rand.New(rand.NewSource(uint64(time.Now().UnixNano())))}

const subdomainAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const subdomainLength = 8
const labelChunkSize = 57

// randomSubdomain generates an 8-char lowercase-alphanumeric label, used to
// build the NS/TXT/A sub-test query names in DNSTT mode.
func randomSubdomain() string {
	randPool.Lock()
	defer randPool.Unlock()

	b := make([]byte, subdomainLength)
	for i := range b {
		b[i] = subdomainAlphabet[randPool.src.Intn(len(subdomainAlphabet))]
	}
	return string(b)
}

// base32Payload generates a Base32-NOPAD-encoded random payload of length
// random bytes, chunked into dot-joined labels no longer than 57
// characters, matching the Slipstream payload construction in
// dns_service.rs's generate_base32_payload.
func base32Payload(length int) string {
	randPool.Lock()
	raw := make([]byte, length)
	randPool.src.Read(raw)
	randPool.Unlock()

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)

	var sb strings.Builder
	for i := 0; i < len(encoded); i += labelChunkSize {
		end := i + labelChunkSize
		if end > len(encoded) {
			end = len(encoded)
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(encoded[i:end])
	}
	return sb.String()
}
