package orders

import (
	"fmt"
	"math/rand"
	"strings"
)

// IssueChallenge derives a fresh payment challenge for an order: the exact
// amount to transfer and the confirmation code to quote.
//
// amount = basePrice*100 + offset, offset uniform in [10,99]. The two-digit
// kopeck offset makes concurrent transfers for the same base price
// distinguishable on the bank statement. Each call is a full replacement of
// any previous challenge, never an increment.
//
// The code is not a secret: it is re-derivable from the category and user id
// and only ties a confirmation message to one (user, category) pair.
func IssueChallenge(basePrice int64, userID int64, category string) (int64, string) {
	offset := rand.Int63n(90) + 10
	amount := basePrice*100 + offset
	code := ChallengeCode(userID, category)
	return amount, code
}

// ChallengeCode returns the deterministic confirmation code for a pair.
func ChallengeCode(userID int64, category string) string {
	return fmt.Sprintf("DOC-%s-%d", strings.ToUpper(category), userID)
}
