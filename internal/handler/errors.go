package handler

import (
	"errors"

	"goldrush-game-api/internal/service"
	"goldrush-game-api/internal/store"
	"goldrush-game-api/pkg/apierror"
)

// mapServiceError translates service and store errors into structured
// API errors. Anything unrecognized falls through as-is and is rendered
// as a 500 by response.Error.
func mapServiceError(err error) error {
	var throttled *service.ThrottledError
	if errors.As(err, &throttled) {
		switch throttled.Reason {
		case service.ThrottleRateLimit:
			return apierror.TooManyRequests("RATE_LIMITED", "clicking too fast").WithMeta(map[string]interface{}{
				"retry_after_ms":       throttled.RetryAfter.Milliseconds(),
				"rate_limit_window_ms": throttled.Settings.WindowMS,
				"rate_limit_max_hits":  throttled.Settings.MaxHits,
			})
		case service.ThrottleCooldown:
			return apierror.TooManyRequests("COOLDOWN_ACTIVE", "cooldown still active").WithMeta(map[string]interface{}{
				"retry_after_ms": throttled.RetryAfter.Milliseconds(),
				"cooldown_ms":    throttled.Settings.CooldownMS,
			})
		}
	}

	switch {
	case errors.Is(err, store.ErrPlayerNotFound):
		return apierror.NotFound("player not found")
	case errors.Is(err, store.ErrItemNotFound):
		return apierror.NotFound("item not found")
	case errors.Is(err, store.ErrAuctionNotFound):
		return apierror.NotFound("auction not found")
	case errors.Is(err, store.ErrOutOfStock):
		return apierror.UnprocessableRule("OUT_OF_STOCK", "not enough stock")
	case errors.Is(err, store.ErrInsufficientFunds):
		return apierror.UnprocessableRule("INSUFFICIENT_FUNDS", "not enough gold")
	case errors.Is(err, store.ErrBidTooLow):
		return apierror.UnprocessableRule("BID_TOO_LOW", "bid must exceed the current price")
	case errors.Is(err, service.ErrUnknownBoard):
		return apierror.BadRequest("unknown leaderboard")
	}
	return err
}
