package orders

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avtoyurist/docbot/models"
)

var (
	codePattern = regexp.MustCompile(`(?i)DOC-[A-Z]+-\d+`)
	// Bounded on both sides so a third decimal digit ("399.471") does not
	// parse as a valid two-decimal amount.
	amountPattern = regexp.MustCompile(`(?:^|\D)(\d+)[.,](\d{2})(?:\D|$)`)
)

// Parsed is the result of extracting a confirmation from free text. Either
// part may be absent; matching requires both.
type Parsed struct {
	Amount    int64
	HasAmount bool
	Code      string
	HasCode   bool
}

// ParseConfirmation extracts a payment amount and confirmation code from a
// free-text message. The amount accepts either a comma or a dot as the
// decimal separator and is normalized to minor units; the code match is
// case-insensitive and normalized to upper case.
func ParseConfirmation(text string) Parsed {
	var parsed Parsed

	if m := codePattern.FindString(text); m != "" {
		parsed.Code = strings.ToUpper(m)
		parsed.HasCode = true
	}

	if m := amountPattern.FindStringSubmatch(text); m != nil {
		major, errMajor := strconv.ParseInt(m[1], 10, 64)
		minor, errMinor := strconv.ParseInt(m[2], 10, 64)
		if errMajor == nil && errMinor == nil {
			parsed.Amount = major*100 + minor
			parsed.HasAmount = true
		}
	}

	return parsed
}

// Matches reports whether the parsed confirmation exactly matches the stored
// challenge. Both parts must be present and equal: a partial match is a
// mismatch, never a fallback.
func Matches(parsed Parsed, order models.Order) bool {
	if !parsed.HasAmount || !parsed.HasCode {
		return false
	}
	return parsed.Amount == order.Amount && parsed.Code == order.Code
}
