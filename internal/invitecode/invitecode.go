// Package invitecode handles the human-typed company join codes of the form XXXX-XXXX-XXXX-XXXX.
package invitecode

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SimoSabev/LynkSkill-sub003/pkg/crypto"
)

const (
	groupSize  = 4
	groupCount = 4
	codeLength = groupSize * groupCount

	// Alphabet omits characters that are easily confused when read aloud or typed (0/O, 1/I/L).
	Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

var (
	formatPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
	separators    = strings.NewReplacer("-", "", "_", "", ".", "")
)

// Normalize upper-cases raw, drops whitespace and separators, and regroups the result into the
// canonical dashed form when exactly sixteen alphanumerics remain. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, strings.ToUpper(raw))
	compact = separators.Replace(compact)

	if len(compact) != codeLength || !isAlphanumeric(compact) {
		return compact
	}
	return group(compact)
}

// IsValidFormat reports whether raw, trimmed and upper-cased, already has the dashed four by four shape.
// Grouping is checked on the caller's input, so a code with misplaced dashes is rejected.
func IsValidFormat(raw string) bool {
	return formatPattern.MatchString(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsExpired reports whether expiresAt is set and strictly before now. A nil expiry never expires.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && expiresAt.Before(now)
}

// Generate returns a new random code in canonical form.
func Generate() (string, error) {
	raw, err := crypto.RandomString(Alphabet, codeLength)
	if err != nil {
		return "", fmt.Errorf("invitecode: generate: %w", err)
	}
	return group(raw), nil
}

func group(compact string) string {
	var b strings.Builder
	b.Grow(codeLength + groupCount - 1)
	for i := 0; i < groupCount; i++ {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(compact[i*groupSize : (i+1)*groupSize])
	}
	return b.String()
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
