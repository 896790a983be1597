package risk

import (
	"math"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// Params controls the illustrative stop and target placement.
type Params struct {
	StopATRMultiplier float64
	RewardRatio       float64
}

// DefaultParams places the stop 1.5 ATR away and the target at 2R.
func DefaultParams() Params {
	return Params{StopATRMultiplier: 1.5, RewardRatio: 2}
}

// DetermineStopLoss places the stop on the losing side of price, atr*multiplier away.
func DetermineStopLoss(price, atr float64, decision model.Decision, p Params) float64 {
	if decision == model.DecisionBuy {
		return price - atr*p.StopATRMultiplier
	}
	return price + atr*p.StopATRMultiplier
}

// CalculateLevels returns stop, target and reward ratio for an actionable
// decision. It returns nil for HOLD or when the stop would sit on the price.
func CalculateLevels(price, atr float64, decision model.Decision, p Params) *model.Levels {
	if !decision.Actionable() || math.IsNaN(atr) || atr <= 0 {
		return nil
	}

	stopLoss := DetermineStopLoss(price, atr, decision, p)
	stopSize := math.Abs(price - stopLoss)
	if stopSize == 0 {
		return nil
	}

	takeProfit := price + stopSize*p.RewardRatio
	if decision == model.DecisionSell {
		takeProfit = price - stopSize*p.RewardRatio
	}

	return &model.Levels{
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		RiskRewardRatio: math.Abs(takeProfit-price) / stopSize,
	}
}
