package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
)

// Reply is what a command handler sends back to the invoking user.
type Reply struct {
	Text   string
	Blocks []slack.Block
}

func (r Reply) payload() map[string]interface{} {
	if len(r.Blocks) > 0 {
		return map[string]interface{}{"blocks": r.Blocks, "response_type": "ephemeral"}
	}
	return map[string]interface{}{"text": r.Text, "response_type": "ephemeral"}
}

// HandleCommand routes the text of a /rei invocation to its subcommand.
func (b *Bot) HandleCommand(ctx context.Context, text, userName string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return helpReply()
	}

	parts := strings.SplitN(text, " ", 2)
	subcommand := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch subcommand {
	case "help":
		return helpReply()
	case "lookup":
		return b.lookup(ctx, args, userName)
	case "search":
		return b.search(ctx, args, userName)
	case "buyers":
		return b.buyers(ctx, args, userName)
	case "skip":
		return b.skipTrace(ctx, args, userName)
	case "ask":
		return b.ask(ctx, args, userName)
	default:
		return Reply{Text: fmt.Sprintf("Unknown command: `%s`\n\nUse `/rei help` to see available commands.", subcommand)}
	}
}

func helpReply() Reply {
	return Reply{Blocks: []slack.Block{
		headerBlock(":house: REI Nationwide Commands"),
		sectionBlock("*Property Research*\n" +
			"• `/rei lookup [address]` - Get property details\n" +
			"• `/rei search [city, state]` - Find high equity leads\n" +
			"• `/rei buyers [city, state]` - Find cash buyers\n\n" +
			"*Skip Tracing*\n" +
			"• `/rei skip [address]` - Get owner contact info (managers+)\n\n" +
			"*AI Assistant*\n" +
			"• `/rei ask [question]` - Ask the AI anything\n\n" +
			"*Examples:*\n" +
			"```/rei lookup 123 Main St, Plano, TX\n" +
			"/rei search Wylie, TX\n" +
			"/rei buyers Dallas, TX\n" +
			"/rei ask What's a good offer on a 60% equity property?```"),
	}}
}

func (b *Bot) lookup(ctx context.Context, address, userName string) Reply {
	if address == "" {
		return Reply{Text: "Please provide an address. Example: `/rei lookup 123 Main St, Plano, TX`"}
	}

	result, status := b.api.Post(ctx, "/api/v1/properties/lookup", map[string]interface{}{"address": address})
	if reply, failed := errorReply(result, status); failed {
		return reply
	}

	detail := detailData(result)
	if len(detail) == 0 {
		return Reply{Text: "No property found for: " + address}
	}

	owner := "Unknown"
	if ownerMap, ok := detail["owner"].(map[string]interface{}); ok {
		owner = stringField(ownerMap, "name", "Unknown")
	}

	return Reply{Blocks: []slack.Block{
		headerBlock(":round_pushpin: Property Details"),
		sectionBlock(fmt.Sprintf("*Address:* %s\n"+
			"*Estimated Value:* $%v\n"+
			"*Year Built:* %v\n"+
			"*Bedrooms:* %v | *Bathrooms:* %v\n"+
			"*Square Feet:* %v\n"+
			"*Equity:* %v%%\n"+
			"*Owner:* %s",
			address,
			fieldOr(detail, "estimated_value", 0),
			fieldOr(detail, "year_built", "N/A"),
			fieldOr(detail, "bedrooms", "N/A"),
			fieldOr(detail, "bathrooms", "N/A"),
			fieldOr(detail, "square_feet", "N/A"),
			fieldOr(detail, "equity_percent", "N/A"),
			owner)),
		contextBlock("Requested by @" + userName),
	}}
}

func (b *Bot) search(ctx context.Context, location, userName string) Reply {
	if location == "" {
		return Reply{Text: "Please provide a location. Example: `/rei search Plano, TX`"}
	}

	city, state := parseLocation(location)
	result, status := b.api.Post(ctx, "/api/v1/properties/search", map[string]interface{}{
		"city":          city,
		"state":         state,
		"min_equity":    40,
		"absentee_only": true,
		"max_results":   5,
	})
	if reply, failed := errorReply(result, status); failed {
		return reply
	}

	properties, _ := result["data"].([]interface{})
	if len(properties) == 0 {
		return Reply{Text: fmt.Sprintf("No high equity leads found in %s, %s", city, state)}
	}

	rows := make([]string, 0, 5)
	for _, raw := range properties {
		if len(rows) == 5 {
			break
		}
		if property, ok := raw.(map[string]interface{}); ok {
			rows = append(rows, formatProperty(property))
		}
	}

	return Reply{Blocks: []slack.Block{
		headerBlock(fmt.Sprintf(":dart: High Equity Leads - %s, %s", city, state)),
		sectionBlock(strings.Join(rows, "\n")),
		contextBlock(fmt.Sprintf("Found %d leads | Requested by @%s", len(properties), userName)),
	}}
}

func (b *Bot) buyers(ctx context.Context, location, userName string) Reply {
	if location == "" {
		return Reply{Text: "Please provide a location. Example: `/rei buyers Dallas, TX`"}
	}

	city, state := parseLocation(location)
	result, status := b.api.Post(ctx, "/api/v1/buyers/search", map[string]interface{}{
		"city":          city,
		"state":         state,
		"min_purchases": 2,
		"max_results":   10,
	})
	if reply, failed := errorReply(result, status); failed {
		return reply
	}

	buyers := buyerData(result)
	if len(buyers) == 0 {
		return Reply{Text: fmt.Sprintf("No portfolio buyers found in %s, %s", city, state)}
	}

	rows := make([]string, 0, 5)
	for _, raw := range buyers {
		if len(rows) == 5 {
			break
		}
		if buyer, ok := raw.(map[string]interface{}); ok {
			rows = append(rows, formatBuyer(buyer))
		}
	}

	return Reply{Blocks: []slack.Block{
		headerBlock(fmt.Sprintf(":moneybag: Cash Buyers - %s, %s", city, state)),
		sectionBlock(strings.Join(rows, "\n")),
		contextBlock(fmt.Sprintf("Found %d portfolio buyers | Requested by @%s", len(buyers), userName)),
	}}
}

func (b *Bot) skipTrace(ctx context.Context, address, userName string) Reply {
	if address == "" {
		return Reply{Text: "Please provide an address. Example: `/rei skip 123 Main St, Plano, TX`"}
	}

	result, status := b.api.Post(ctx, "/api/v1/skip-trace", map[string]interface{}{"address": address})
	if status == http.StatusForbidden {
		return Reply{Text: "Skip trace is restricted to managers and acquisitions team."}
	}
	if reply, failed := errorReply(result, status); failed {
		return reply
	}

	data, _ := result["data"].(map[string]interface{})
	phones := joinStrings(data["phones"], 3)
	emails := joinStrings(data["emails"], 3)

	return Reply{Blocks: []slack.Block{
		headerBlock(":telephone_receiver: Skip Trace Results"),
		sectionBlock(fmt.Sprintf("*Address:* %s\n*Owner:* %v\n*Phones:* %s\n*Emails:* %s",
			address, fieldOr(data, "name", "Unknown"), phones, emails)),
		contextBlock("Skip trace credits used | Requested by @" + userName),
	}}
}

func (b *Bot) ask(ctx context.Context, question, userName string) Reply {
	if question == "" {
		return Reply{Text: "Please ask a question. Example: `/rei ask What's a good MAO formula?`"}
	}

	answer := b.askAssistant(ctx, question,
		"You are the REI Nationwide AI Assistant helping a real estate investment team. Be concise and practical.")
	if answer == "" {
		return Reply{Text: "No response generated"}
	}

	return Reply{Blocks: []slack.Block{
		headerBlock(":robot_face: AI Assistant"),
		sectionBlock("*Q:* " + question),
		slack.NewDividerBlock(),
		sectionBlock(answer),
		contextBlock("Asked by @" + userName),
	}}
}

// askAssistant calls the AI endpoint and returns the answer text, or "" when
// the call degraded.
func (b *Bot) askAssistant(ctx context.Context, query, assistantContext string) string {
	result, status := b.api.Post(ctx, "/api/v1/ai/query", map[string]interface{}{
		"query":   query,
		"context": assistantContext,
	})
	if _, failed := errorReply(result, status); failed {
		return ""
	}

	data, _ := result["data"].(map[string]interface{})
	return stringField(data, "response", "")
}

// errorReply folds degraded transport values and API error envelopes into a
// user-facing reply.
func errorReply(result map[string]interface{}, status int) (Reply, bool) {
	if message, ok := result["error"].(string); ok && message != "" {
		return Reply{Text: "Error: " + message}, true
	}
	if status >= http.StatusBadRequest {
		message := "request failed"
		if m, ok := result["message"].(string); ok && m != "" {
			message = m
		}
		return Reply{Text: "Error: " + message}, true
	}
	return Reply{}, false
}

// detailData digs the property detail payload out of a lookup response,
// accepting both an object and a single-element list.
func detailData(result map[string]interface{}) map[string]interface{} {
	detail, ok := result["detail"].(map[string]interface{})
	if !ok {
		return nil
	}

	switch data := detail["data"].(type) {
	case map[string]interface{}:
		return data
	case []interface{}:
		if len(data) > 0 {
			if first, ok := data[0].(map[string]interface{}); ok {
				return first
			}
		}
	}
	return nil
}

func buyerData(result map[string]interface{}) []interface{} {
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return nil
	}
	buyers, _ := data["buyers"].([]interface{})
	return buyers
}

func joinStrings(value interface{}, max int) string {
	items, ok := value.([]interface{})
	if !ok || len(items) == 0 {
		return "None found"
	}

	parts := make([]string, 0, max)
	for _, item := range items {
		if len(parts) == max {
			break
		}
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "None found"
	}
	return strings.Join(parts, ", ")
}
