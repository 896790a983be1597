package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/SmartMoney/internal/alert"
)

const strategyLine = "Strategy: ICT Smart Money Concepts (1H→5m)"

// FormatSignal renders the alert caption.
func FormatSignal(ev alert.Event) string {
	sig := ev.Signal

	label := ev.Label
	if label == "" {
		label = ev.Asset
	}

	rsi := "N/A"
	if sig.RSI != nil {
		rsi = fmt.Sprintf("%.2f", *sig.RSI)
	}

	reasons := "N/A"
	if len(sig.Reasons) > 0 {
		reasons = strings.Join(sig.Reasons, ", ")
	}

	var b strings.Builder
	b.WriteString("📊 SmartMoney signal\n")
	b.WriteString(label + "\n")
	fmt.Fprintf(&b, "Time: %s\n", sig.Timestamp.UTC().Format(time.DateTime))
	fmt.Fprintf(&b, "Price: %.4f\n", sig.Price)
	fmt.Fprintf(&b, "Signal: %s\n", sig.Decision)
	if ev.Previous != "" {
		fmt.Fprintf(&b, "Previous: %s\n", ev.Previous)
	}
	fmt.Fprintf(&b, "Bias(1H): %s\n", sig.BiasTrend)
	fmt.Fprintf(&b, "5m structure: %s\n", sig.EntryTrend)
	fmt.Fprintf(&b, "RSI: %s\n", rsi)
	fmt.Fprintf(&b, "Reasons: %s\n", reasons)
	if sig.Levels != nil {
		fmt.Fprintf(&b, "Stop: %.4f | Target: %.4f (R:R %.1f)\n",
			sig.Levels.StopLoss, sig.Levels.TakeProfit, sig.Levels.RiskRewardRatio)
	}
	b.WriteString(strategyLine)
	return b.String()
}

// FormatWarning renders the message sent when an asset could not be analyzed.
func FormatWarning(label string, err error) string {
	return fmt.Sprintf("⚠️ analyze error for %s: %v", label, err)
}
