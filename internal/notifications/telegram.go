package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/haruquant/swingrisk/pkg/types"
)

type TelegramNotifier struct {
	token  string
	chatID string
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
	}
}

func (t *TelegramNotifier) SendAlert(level, message string) error {
	emoji := "ℹ️"
	switch level {
	case "warning":
		emoji = "⚠️"
	case "error":
		emoji = "🚨"
	case "success":
		emoji = "✅"
	}

	text := fmt.Sprintf("%s *Swing Risk Alert*\n\n%s", emoji, message)
	return t.post(text)
}

// SendDecision formats one decision the way the desk reads them: signal,
// size, stop and the VaR impact.
func (t *TelegramNotifier) SendDecision(d types.Decision) error {
	verdict := "❌ REJECTED"
	if d.Accepted {
		verdict = "✅ ACCEPTED"
	}

	text := fmt.Sprintf(`%s *%s %s*

Lots: %.2f
Stop: %.0f pips (ADR %.0f)
Daily range: %.0f%% of ADR
VaR: %.2f → %.2f (%+.2f%%)
Reason: %s`,
		verdict, d.Symbol, d.Direction,
		d.Lots, d.StopPips, d.ADR,
		d.RangePct,
		d.CurrentVaR, d.ProposedVaR, d.DeltaVaRPct,
		d.Reason)

	return t.post(text)
}

func (t *TelegramNotifier) post(text string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := http.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
