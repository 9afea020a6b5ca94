package bot

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// parseLocation splits free-form text like "Plano, TX" or "Plano TX" into a
// city and a state, defaulting the state to TX when only a city is given.
func parseLocation(text string) (string, string) {
	text = strings.Join(strings.Fields(text), " ")

	if strings.Contains(text, ",") {
		parts := strings.SplitN(text, ",", 2)
		city := strings.TrimSpace(parts[0])
		state := strings.TrimSpace(parts[1])
		if city != "" && state != "" {
			return city, strings.ToUpper(state)
		}
	}

	parts := strings.Fields(text)
	if len(parts) >= 2 {
		state := strings.ToUpper(parts[len(parts)-1])
		city := strings.Join(parts[:len(parts)-1], " ")
		return city, state
	}

	return text, "TX"
}

// formatProperty renders one property row as Slack markdown.
func formatProperty(property map[string]interface{}) string {
	address := "Unknown"
	switch addr := property["address"].(type) {
	case map[string]interface{}:
		street := stringField(addr, "street", "Unknown")
		address = fmt.Sprintf("%s, %s, %s", street, stringField(addr, "city", ""), stringField(addr, "state", ""))
	case string:
		address = addr
	}

	return fmt.Sprintf(":round_pushpin: *%s*\n   Equity: %v%% | Value: $%v | Built: %v",
		address,
		fieldOr(property, "equity_percent", "N/A"),
		fieldOr(property, "estimated_value", 0),
		fieldOr(property, "year_built", "N/A"),
	)
}

// formatBuyer renders one aggregated buyer row as Slack markdown.
func formatBuyer(buyer map[string]interface{}) string {
	return fmt.Sprintf(":moneybag: *%s* - %v purchases in last 12 months",
		stringField(buyer, "name", "Unknown"),
		fieldOr(buyer, "purchase_count", 0),
	)
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if value, ok := m[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

func fieldOr(m map[string]interface{}, key string, fallback interface{}) interface{} {
	if value, ok := m[key]; ok && value != nil {
		return value
	}
	return fallback
}

func headerBlock(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, false, false))
}

func sectionBlock(markdown string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false), nil, nil)
}

func contextBlock(markdown string) *slack.ContextBlock {
	return slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false))
}
