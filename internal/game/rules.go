package game

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBettingClosed = errors.New("betting_closed")
	ErrInvalidSide   = errors.New("invalid_side")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrOverBetCap    = errors.New("over_bet_cap")
	ErrUnknownPlayer = errors.New("unknown_player")
)

// BetCapError reports the cap that was exceeded.
type BetCapError struct {
	Cap int64
}

func (e *BetCapError) Error() string {
	return fmt.Sprintf("over_bet_cap: max %d", e.Cap)
}

func (e *BetCapError) Unwrap() error { return ErrOverBetCap }

// ValidateBet checks a bet against the round phase and the player's cap and
// returns the whole amount to stake. Fractions are truncated.
func ValidateBet(phase Phase, side Side, amount float64, limit int64) (int64, error) {
	if phase != PhaseBetting {
		return 0, ErrBettingClosed
	}
	if !side.Valid() {
		return 0, ErrInvalidSide
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	stake := math.Floor(amount)
	if stake < 1 {
		return 0, ErrInvalidAmount
	}
	if limit < 0 {
		limit = 0
	}
	if stake > float64(limit) {
		return 0, &BetCapError{Cap: limit}
	}
	return int64(stake), nil
}

func BetCap(maxBet, balance int64) int64 {
	if balance < maxBet {
		return balance
	}
	return maxBet
}

// ErrorCode maps game errors to wire codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrBettingClosed):
		return "betting_closed"
	case errors.Is(err, ErrInvalidSide):
		return "invalid_side"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrOverBetCap):
		return "over_bet_cap"
	case errors.Is(err, ErrUnknownPlayer):
		return "unknown_player"
	default:
		return "internal_error"
	}
}

// RejectReason is the player-facing message shown for a rejected command.
func RejectReason(err error) string {
	var capErr *BetCapError
	switch {
	case errors.As(err, &capErr):
		return fmt.Sprintf("Cược tối đa: %d", capErr.Cap)
	case errors.Is(err, ErrBettingClosed):
		return "Đã hết thời gian đặt cược"
	case errors.Is(err, ErrInvalidSide):
		return "Cửa cược không hợp lệ"
	case errors.Is(err, ErrInvalidAmount):
		return "Số tiền cược không hợp lệ"
	default:
		return "Yêu cầu không hợp lệ"
	}
}
