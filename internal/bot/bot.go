package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// Bot bridges Slack slash commands and mentions to the platform API over
// Socket Mode.
type Bot struct {
	api    *APIClient
	client *slack.Client
	socket *socketmode.Client
	logger zerolog.Logger
}

// Config defines configuration options for the Slack bot.
type Config struct {
	BotToken   string
	AppToken   string
	APIBaseURL string
	APIToken   string
}

// New constructs the Slack bot.
func New(cfg Config, logger zerolog.Logger) *Bot {
	client := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))

	return &Bot{
		api:    NewAPIClient(cfg.APIBaseURL, cfg.APIToken, logger),
		client: client,
		socket: socketmode.New(client),
		logger: logger.With().Str("component", "slack_bot").Logger(),
	}
}

// Run processes Socket Mode events until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go b.consumeEvents(ctx)
	return b.socket.RunContext(ctx)
}

func (b *Bot) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}

			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				command, ok := evt.Data.(slack.SlashCommand)
				if !ok || evt.Request == nil {
					continue
				}
				reply := b.HandleCommand(ctx, command.Text, command.UserName)
				b.socket.Ack(*evt.Request, reply.payload())

			case socketmode.EventTypeEventsAPI:
				event, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok || evt.Request == nil {
					continue
				}
				b.socket.Ack(*evt.Request)
				b.handleEvent(ctx, event)

			case socketmode.EventTypeConnectionError:
				b.logger.Warn().Msg("socket mode connection error")
			}
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, event slackevents.EventsAPIEvent) {
	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		b.handleMention(ctx, inner)
	case *slackevents.MessageEvent:
		b.handleDirectMessage(ctx, inner)
	}
}

// handleMention treats @mentions as assistant queries.
func (b *Bot) handleMention(ctx context.Context, event *slackevents.AppMentionEvent) {
	question := strings.TrimSpace(mentionPattern.ReplaceAllString(event.Text, ""))
	if question == "" {
		b.say(event.Channel, fmt.Sprintf("<@%s> Hey! Use `/rei help` to see what I can do, or just ask me a question!", event.User))
		return
	}

	answer := b.askAssistant(ctx, question, "You are the REI Nationwide AI Assistant. Be helpful and concise.")
	if answer == "" {
		answer = "Sorry, I couldn't process that request."
	}
	b.say(event.Channel, fmt.Sprintf("<@%s> %s", event.User, answer))
}

// handleDirectMessage answers DMs; channel chatter is ignored.
func (b *Bot) handleDirectMessage(ctx context.Context, event *slackevents.MessageEvent) {
	if event.ChannelType != "im" || event.BotID != "" {
		return
	}
	text := strings.TrimSpace(event.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	answer := b.askAssistant(ctx, text, "You are the REI Nationwide AI Assistant. Be helpful and concise.")
	if answer == "" {
		answer = "Sorry, I couldn't process that."
	}
	b.say(event.Channel, answer)
}

func (b *Bot) say(channel, text string) {
	if _, _, err := b.client.PostMessage(channel, slack.MsgOptionText(text, false)); err != nil {
		b.logger.Warn().Err(err).Str("channel", channel).Msg("failed to post message")
	}
}
