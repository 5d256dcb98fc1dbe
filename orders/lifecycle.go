package orders

import (
	"time"

	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/utils"
)

// SubmitStatus tells the caller what a free-text submission meant for the
// user's order.
type SubmitStatus int

const (
	// SubmitNoOrder means no order exists for the pair; prompt to /start.
	SubmitNoOrder SubmitStatus = iota
	// SubmitPayExpired means the payment window lapsed before confirmation;
	// the user must re-select the category. No automatic reissue.
	SubmitPayExpired
	// SubmitMismatch means the text did not exactly reproduce the challenge;
	// the reply must state the expected amount and code.
	SubmitMismatch
	// SubmitVerified means the confirmation was accepted just now.
	SubmitVerified
	// SubmitAlreadyVerified means the text repeats an already-accepted
	// confirmation; a no-op, not an error.
	SubmitAlreadyVerified
	// SubmitReady means the order is verified and the text is the situation
	// description, ready for drafting.
	SubmitReady
	// SubmitAccessLapsed means the verified order's access window is over;
	// payment is required again.
	SubmitAccessLapsed
)

// SubmitResult carries the status plus the current stored order where one
// exists (for mismatch replies and the drafting hand-off).
type SubmitResult struct {
	Status SubmitStatus
	Order  models.Order
}

// Lifecycle is the order state machine: NoOrder -> Unpaid -> Verified, with
// Verified lapsing back to payment-required. Expiry is checked at read time
// against the injected clock; there are no background timers.
type Lifecycle struct {
	store     *Store
	payTTL    time.Duration
	accessTTL time.Duration
	now       func() time.Time
}

// NewLifecycle creates a Lifecycle with the two validity windows
func NewLifecycle(store *Store, payTTL, accessTTL time.Duration) *Lifecycle {
	return &Lifecycle{
		store:     store,
		payTTL:    payTTL,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// SelectCategory issues a fresh challenge for (userID, category) from any
// state. A previously verified order for the pair does not carry over: the
// upsert resets it to unpaid with new payment details.
func (l *Lifecycle) SelectCategory(userID int64, category string, basePrice int64) (models.Order, error) {
	amount, code := IssueChallenge(basePrice, userID, category)
	utils.LogInfo("Issuing challenge for user %d category %s: amount %d code %s", userID, category, amount, code)
	return l.store.Upsert(userID, category, amount, code)
}

// Submit routes a free-text message through the state machine for the user's
// active category.
func (l *Lifecycle) Submit(userID int64, category string, text string) (SubmitResult, error) {
	order, found, err := l.store.Get(userID, category)
	if err != nil {
		return SubmitResult{}, err
	}
	if !found {
		return SubmitResult{Status: SubmitNoOrder}, nil
	}

	age := l.now().Sub(order.CreatedAt)

	if order.Verified {
		if age > l.accessTTL {
			utils.LogInfo("Access window lapsed for user %d category %s (age %v)", userID, category, age)
			return SubmitResult{Status: SubmitAccessLapsed, Order: order}, nil
		}
		// A repeated confirmation for an already-verified order is a no-op,
		// not a situation description.
		if Matches(ParseConfirmation(text), order) {
			return SubmitResult{Status: SubmitAlreadyVerified, Order: order}, nil
		}
		return SubmitResult{Status: SubmitReady, Order: order}, nil
	}

	if age > l.payTTL {
		utils.LogInfo("Payment window lapsed for user %d category %s (age %v)", userID, category, age)
		return SubmitResult{Status: SubmitPayExpired, Order: order}, nil
	}

	parsed := ParseConfirmation(text)
	if !Matches(parsed, order) {
		return SubmitResult{Status: SubmitMismatch, Order: order}, nil
	}

	ok, err := l.store.MarkVerified(userID, category, order.Amount, order.Code)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		// The challenge was reissued between our read and the write. The
		// confirmation belongs to the superseded order; report the current
		// expectation instead of verifying the wrong challenge.
		current, found, err := l.store.Get(userID, category)
		if err != nil {
			return SubmitResult{}, err
		}
		if !found {
			return SubmitResult{Status: SubmitNoOrder}, nil
		}
		utils.LogInfo("Confirmation for superseded challenge rejected for user %d category %s", userID, category)
		return SubmitResult{Status: SubmitMismatch, Order: current}, nil
	}

	order.Verified = true
	utils.LogInfo("Order verified for user %d category %s", userID, category)
	return SubmitResult{Status: SubmitVerified, Order: order}, nil
}
