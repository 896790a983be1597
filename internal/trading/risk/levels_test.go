package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/model"
)

func TestCalculateLevels(t *testing.T) {
	tests := []struct {
		name     string
		decision model.Decision
		atr      float64
		want     *model.Levels
	}{
		{
			name:     "long",
			decision: model.DecisionBuy,
			atr:      2,
			want:     &model.Levels{StopLoss: 97, TakeProfit: 106, RiskRewardRatio: 2},
		},
		{
			name:     "short",
			decision: model.DecisionSell,
			atr:      2,
			want:     &model.Levels{StopLoss: 103, TakeProfit: 94, RiskRewardRatio: 2},
		},
		{
			name:     "hold has no levels",
			decision: model.DecisionHold,
			atr:      2,
		},
		{
			name:     "zero atr has no levels",
			decision: model.DecisionBuy,
			atr:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLevels(100, tt.atr, tt.decision, DefaultParams())
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want.StopLoss, got.StopLoss, 1e-9)
			assert.InDelta(t, tt.want.TakeProfit, got.TakeProfit, 1e-9)
			assert.InDelta(t, tt.want.RiskRewardRatio, got.RiskRewardRatio, 1e-9)
		})
	}
}
