package utils

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *mathrand.Rand

func init() {
	seededRand = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
}

// GenerateTrx returns a random alphanumeric transaction tag of length n,
// recorded on every deposit alongside the gateway reference.
func GenerateTrx(n int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		mu.Lock()
		defer mu.Unlock()
		for i := range b {
			b[i] = alphabet[seededRand.Intn(len(alphabet))]
		}
		return string(b)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}

// GenerateReference builds a locally unique reference for records created
// before the gateway assigns its own.
func GenerateReference(userID uint) string {
	mu.Lock()
	defer mu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := nowNano % 1000000

	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("HVT-%06d%03d%d", nanoPart, randPart, userID)
}
