package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPayTTL    = 1800 * time.Second
	testAccessTTL = 24 * time.Hour
)

func newTestLifecycle(t *testing.T) (*Lifecycle, *Store) {
	t.Helper()
	store := newTestStore(t)
	return NewLifecycle(store, testPayTTL, testAccessTTL), store
}

func TestLifecycleSelectCategory(t *testing.T) {
	lc, store := newTestLifecycle(t)

	t.Run("issues a challenge in the offset window", func(t *testing.T) {
		order, err := lc.SelectCategory(42, "lawsuit", 399)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, order.Amount, int64(39910))
		assert.LessOrEqual(t, order.Amount, int64(39999))
		assert.Equal(t, "DOC-LAWSUIT-42", order.Code)
		assert.False(t, order.Verified)
	})

	t.Run("reselect supersedes the old challenge", func(t *testing.T) {
		first, err := lc.SelectCategory(42, "lawsuit", 399)
		require.NoError(t, err)
		confirmation := fmt.Sprintf("399.%02d %s", first.Amount%100, first.Code)

		// Supersede until the amount actually changes (offsets collide with
		// probability 1/90 per draw).
		second := first
		for i := 0; i < 20 && second.Amount == first.Amount; i++ {
			second, err = lc.SelectCategory(42, "lawsuit", 399)
			require.NoError(t, err)
		}
		require.NotEqual(t, first.Amount, second.Amount)

		res, err := lc.Submit(42, "lawsuit", confirmation)
		require.NoError(t, err)
		assert.Equal(t, SubmitMismatch, res.Status)
		assert.Equal(t, second.Amount, res.Order.Amount)

		stored, _, err := store.Get(42, "lawsuit")
		require.NoError(t, err)
		assert.False(t, stored.Verified)
	})

	t.Run("reselect after verification requires paying again", func(t *testing.T) {
		order, err := lc.SelectCategory(9, "court", 1500)
		require.NoError(t, err)
		ok, err := store.MarkVerified(9, "court", order.Amount, order.Code)
		require.NoError(t, err)
		require.True(t, ok)

		fresh, err := lc.SelectCategory(9, "court", 1500)
		require.NoError(t, err)
		assert.False(t, fresh.Verified)
	})
}

func TestLifecycleSubmitConfirmation(t *testing.T) {
	t.Run("exact confirmation flips unpaid to verified", func(t *testing.T) {
		lc, store := newTestLifecycle(t)
		_, err := store.Upsert(42, "lawsuit", 39947, "DOC-LAWSUIT-42")
		require.NoError(t, err)

		res, err := lc.Submit(42, "lawsuit", "399.47 DOC-LAWSUIT-42")
		require.NoError(t, err)
		assert.Equal(t, SubmitVerified, res.Status)

		stored, _, err := store.Get(42, "lawsuit")
		require.NoError(t, err)
		assert.True(t, stored.Verified)
	})

	t.Run("mismatch reports the expected challenge", func(t *testing.T) {
		lc, store := newTestLifecycle(t)
		_, err := store.Upsert(42, "lawsuit", 39947, "DOC-LAWSUIT-42")
		require.NoError(t, err)

		res, err := lc.Submit(42, "lawsuit", "399.48 DOC-LAWSUIT-42")
		require.NoError(t, err)
		assert.Equal(t, SubmitMismatch, res.Status)
		assert.Equal(t, int64(39947), res.Order.Amount)
		assert.Equal(t, "DOC-LAWSUIT-42", res.Order.Code)
	})

	t.Run("no order for the pair", func(t *testing.T) {
		lc, _ := newTestLifecycle(t)
		res, err := lc.Submit(1, "court", "anything")
		require.NoError(t, err)
		assert.Equal(t, SubmitNoOrder, res.Status)
	})
}

func TestLifecyclePayTTLBoundary(t *testing.T) {
	t.Run("confirmation at 1799s is accepted", func(t *testing.T) {
		lc, store := newTestLifecycle(t)
		order, err := store.Upsert(42, "lawsuit", 39947, "DOC-LAWSUIT-42")
		require.NoError(t, err)
		lc.now = func() time.Time { return order.CreatedAt.Add(1799 * time.Second) }

		res, err := lc.Submit(42, "lawsuit", "399.47 DOC-LAWSUIT-42")
		require.NoError(t, err)
		assert.Equal(t, SubmitVerified, res.Status)
	})

	t.Run("confirmation at 1801s is expired with no auto-reissue", func(t *testing.T) {
		lc, store := newTestLifecycle(t)
		order, err := store.Upsert(42, "lawsuit", 39947, "DOC-LAWSUIT-42")
		require.NoError(t, err)
		lc.now = func() time.Time { return order.CreatedAt.Add(1801 * time.Second) }

		res, err := lc.Submit(42, "lawsuit", "399.47 DOC-LAWSUIT-42")
		require.NoError(t, err)
		assert.Equal(t, SubmitPayExpired, res.Status)

		// Expiry does not replace the challenge; the stored order is intact.
		stored, _, err := store.Get(42, "lawsuit")
		require.NoError(t, err)
		assert.Equal(t, int64(39947), stored.Amount)
		assert.False(t, stored.Verified)
	})
}

func TestLifecycleVerifiedState(t *testing.T) {
	setupVerified := func(t *testing.T) (*Lifecycle, *Store) {
		lc, store := newTestLifecycle(t)
		_, err := store.Upsert(42, "lawsuit", 39947, "DOC-LAWSUIT-42")
		require.NoError(t, err)
		res, err := lc.Submit(42, "lawsuit", "399.47 DOC-LAWSUIT-42")
		require.NoError(t, err)
		require.Equal(t, SubmitVerified, res.Status)
		return lc, store
	}

	t.Run("resubmitted confirmation is a no-op", func(t *testing.T) {
		lc, store := setupVerified(t)

		res, err := lc.Submit(42, "lawsuit", "399.47 DOC-LAWSUIT-42")
		require.NoError(t, err)
		assert.Equal(t, SubmitAlreadyVerified, res.Status)

		stored, _, err := store.Get(42, "lawsuit")
		require.NoError(t, err)
		assert.True(t, stored.Verified)
	})

	t.Run("free text on a verified order is ready for drafting", func(t *testing.T) {
		lc, _ := setupVerified(t)

		res, err := lc.Submit(42, "lawsuit", "сосед затопил квартиру, ущерб 80 тысяч")
		require.NoError(t, err)
		assert.Equal(t, SubmitReady, res.Status)
		assert.True(t, res.Order.Verified)
	})

	t.Run("lapsed access window requires paying again", func(t *testing.T) {
		lc, store := setupVerified(t)
		stored, _, err := store.Get(42, "lawsuit")
		require.NoError(t, err)
		lc.now = func() time.Time { return stored.CreatedAt.Add(testAccessTTL + time.Second) }

		res, err := lc.Submit(42, "lawsuit", "опишу ситуацию")
		require.NoError(t, err)
		assert.Equal(t, SubmitAccessLapsed, res.Status)
	})
}
