package recovery

import (
	"math/rand/v2"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// GenerateCode returns a 6-digit decimal code drawn uniformly from [100000, 999999].
// The source is math/rand/v2, not crypto/rand; the code is a temporary password for a low-assurance flow.
func GenerateCode() string {
	return strconv.Itoa(codeMin + rand.IntN(codeMax-codeMin+1))
}
