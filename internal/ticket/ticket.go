// Package ticket canonicalizes, validates and generates the
// human-facing ticket codes of the form CCI-XXXXXX.  The same
// normalization is applied to manual text entry and to decoded QR
// payloads so that a pasted full code, a typed 6-character suffix and
// a scanned URL embedding the code all resolve identically.
package ticket

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
)

// Prefix is the fixed ticket code prefix including the dash.
const Prefix = "CCI-"

// suffixLen is the number of alphanumeric characters after the prefix.
const suffixLen = 6

// alphabet is the character set of the random suffix.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrInvalidCode is returned when raw input cannot be resolved into a
// canonical ticket code.
var ErrInvalidCode = errors.New("invalid ticket code")

var (
	// embeddedRe finds a full code anywhere inside the cleaned input,
	// e.g. in a scanned URL such as https://example.org/t/CCI-A1B2C3.
	embeddedRe = regexp.MustCompile(`CCI-[A-Z0-9]{6}`)
	// bareRe matches a bare 6-character suffix with no prefix.
	bareRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	// canonicalRe matches an already canonical code exactly.
	canonicalRe = regexp.MustCompile(`^CCI-[A-Z0-9]{6}$`)
)

// Normalize resolves raw user or scanner input into the canonical
// uppercase CCI-XXXXXX form.  Whitespace is stripped and the input is
// uppercased first.  Inputs handled, in order: text containing a full
// code (the first match is extracted), and a bare 6-character
// alphanumeric suffix (the prefix is added).  Anything else yields
// ErrInvalidCode.
func Normalize(raw string) (string, error) {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if cleaned == "" {
		return "", ErrInvalidCode
	}
	if m := embeddedRe.FindString(cleaned); m != "" {
		return m, nil
	}
	if bareRe.MatchString(cleaned) {
		return Prefix + cleaned, nil
	}
	return "", ErrInvalidCode
}

// IsCanonical reports whether s is already a canonical ticket code.
func IsCanonical(s string) bool {
	return canonicalRe.MatchString(s)
}

// Generate returns a fresh random ticket code.  Uniqueness is not
// guaranteed here; the caller inserts under a unique index and
// retries on collision.
func Generate() (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, suffixLen)
	for i, b := range buf {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}
	return Prefix + string(suffix), nil
}
