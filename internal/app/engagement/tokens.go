package engagement

import (
	"time"

	"github.com/lifequest/lifequest/internal/domain"
)

// RefillPeriod is the AI token cadence. A refill restores the full cap;
// unused tokens do not accrue.
const RefillPeriod = 24 * time.Hour

// AITokens returns the balance after a lazy refill check.
func (e *Engine) AITokens() int {
	if e.refillTokens() {
		e.commit()
	}
	return e.state.AITokens
}

// SpendAIToken debits n tokens. Returns false, with no change beyond a due
// refill, if n < 1 or the balance is short.
func (e *Engine) SpendAIToken(n int) bool {
	refilled := e.refillTokens()
	if n < 1 || e.state.AITokens < n {
		if refilled {
			e.commit()
		}
		return false
	}
	e.state.AITokens -= n
	e.emit(domain.EventTokensSpent, "", n)
	e.commit()
	return true
}

// BuyAITokens exchanges coinCost coins for amount tokens.
// Tokens above the cap are discarded. Fails atomically on short coins.
func (e *Engine) BuyAITokens(amount, coinCost int) bool {
	if amount < 1 || coinCost < 0 {
		return false
	}
	refilled := e.refillTokens()
	if !e.debitCoins(coinCost) {
		if refilled {
			e.commit()
		}
		return false
	}
	credited := min(satAdd(e.state.AITokens, amount), e.state.MaxAITokens) - e.state.AITokens
	e.state.AITokens += credited
	e.emit(domain.EventTokensBought, "", credited)
	e.commit()
	return true
}

// TimeUntilNextRefill returns the wait until the next full refill, floored at 0.
// It is a pure read.
func (e *Engine) TimeUntilNextRefill() time.Duration {
	elapsed := time.Duration(ElapsedMillis(e.state.LastTokenRefill, e.now())) * time.Millisecond
	left := e.refill - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// SetTier changes the package tier and re-derives the token cap.
func (e *Engine) SetTier(tier domain.PackageTier) {
	e.state.Profile.Tier = tier
	e.applyTier(tier)
	e.commit()
}

// refillTokens resets the balance to the cap once a full period has elapsed.
func (e *Engine) refillTokens() bool {
	now := e.now()
	if now.Sub(e.state.LastTokenRefill) < e.refill {
		return false
	}
	e.state.AITokens = e.state.MaxAITokens
	e.state.LastTokenRefill = now
	e.emit(domain.EventTokensRefilled, "", e.state.MaxAITokens)
	return true
}

func (e *Engine) applyTier(tier domain.PackageTier) {
	e.state.MaxAITokens = e.capForTier(tier)
	e.state.AITokens = clamp(e.state.AITokens, 0, e.state.MaxAITokens)
}

func (e *Engine) capForTier(tier domain.PackageTier) int {
	if c, ok := e.tierCaps[tier]; ok {
		return c
	}
	return e.tierCaps[domain.TierFree]
}
