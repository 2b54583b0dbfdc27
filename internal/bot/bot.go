package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/advisor"
	"github.com/agrovision/backend/internal/storage"
)

// Bot is the Telegram gateway to the advisory pipeline. Each chat can be
// bound to one farm with /farm so turns carry farm context.
type Bot struct {
	api     *tgbotapi.BotAPI
	service *advisor.Service
	farms   storage.FarmStore
	logger  *zap.Logger

	mu        sync.RWMutex
	boundFarm map[int64]string
}

func New(token string, service *advisor.Service, farms storage.FarmStore, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:       api,
		service:   service,
		farms:     farms,
		logger:    logger,
		boundFarm: make(map[int64]string),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Text == "" {
		b.sendMessage(message.Chat.ID, "Please send me a text question about your farm.")
		return
	}

	msg, err := b.service.Respond(ctx, advisor.Request{
		UserID:  strconv.FormatInt(message.From.ID, 10),
		FarmID:  b.farmFor(message.Chat.ID),
		Message: message.Text,
	})
	if err != nil {
		b.logger.Error("Failed to process chat turn",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't process your question. Please try again.")
		return
	}

	text := msg.ResponseText
	if len(msg.Suggestions) > 0 {
		text += "\n\nYou could also:"
		for _, s := range msg.Suggestions {
			text += "\n• " + s
		}
	}

	reply := tgbotapi.NewMessage(message.Chat.ID, text)
	reply.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send response",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "farm":
		b.handleFarm(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to AgroVision! 🌾
I can answer questions about your crop health, weather, and what to do next on your farm.

Bind this chat to your farm with /farm <farm-id>, then just ask me anything, for example:
"How is my wheat crop doing?"

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/farm <farm-id> - Bind this chat to a farm
/history - Show recent questions for the bound farm

You can ask about:
- Crop health and satellite readings
- Weather and the 7-day forecast
- Problems like yellowing or pests
- What to do next on your farm`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleFarm(ctx context.Context, message *tgbotapi.Message) {
	farmID := strings.TrimSpace(message.CommandArguments())
	if farmID == "" {
		b.sendMessage(message.Chat.ID, "Usage: /farm <farm-id>")
		return
	}

	farm, err := b.farms.GetFarm(ctx, farmID)
	if err != nil {
		b.logger.Error("Failed to look up farm",
			zap.Error(err),
			zap.String("farm_id", farmID))
		b.sendErrorMessage(message.Chat.ID, "I couldn't find that farm. Check the id and try again.")
		return
	}

	b.mu.Lock()
	b.boundFarm[message.Chat.ID] = farm.ID
	b.mu.Unlock()

	b.sendMessage(message.Chat.ID, fmt.Sprintf("This chat is now bound to %s (%s). Ask away!", farm.Name, farm.CropType))
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	farmID := b.farmFor(message.Chat.ID)
	if farmID == "" {
		b.sendMessage(message.Chat.ID, "Bind this chat to a farm first with /farm <farm-id>.")
		return
	}

	history, err := b.service.History(ctx, farmID, 5)
	if err != nil {
		b.logger.Error("Failed to get chat history",
			zap.Error(err),
			zap.String("farm_id", farmID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your history.")
		return
	}

	if len(history) == 0 {
		b.sendMessage(message.Chat.ID, "No questions for this farm yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your recent questions:\n\n")
	for _, msg := range history {
		sb.WriteString(fmt.Sprintf("Q: %s\n", msg.Message))
		sb.WriteString(fmt.Sprintf("A: %s\n\n", msg.ResponseText))
	}

	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) farmFor(chatID int64) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.boundFarm[chatID]
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
