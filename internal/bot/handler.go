package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tubetrack/internal/config"
	"tubetrack/internal/domain"
	"tubetrack/internal/scraper"
	"tubetrack/internal/youtube"
)

// Videos is the part of the video service the bot uses.
type Videos interface {
	ListCollections(ctx context.Context) ([]domain.CollectionSummary, error)
	AddLink(ctx context.Context, collectionID, url, title, category string) (domain.Link, error)
}

// Training is the part of the training service the bot uses.
type Training interface {
	GetProgressStats(ctx context.Context, monthID string) (domain.ProgressStats, error)
}

const (
	welcomeMessage = "Welcome to TubeTrack! Send me a YouTube link and I'll save it to your watch list.\n\n" +
		"/collections - list collections\n" +
		"/add <url> [title] - save a video\n" +
		"/progress <month> - training progress"
	helpMessage = "Send me a YouTube link, or use /add, /collections or /progress."
)

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot      *tgbot.Bot
	cfg      config.TelegramConfig
	videos   Videos
	training Training
	scraper  scraper.Scraper
	log      logrus.FieldLogger
}

// NewHandler creates a new bot handler instance.
func NewHandler(cfg config.TelegramConfig, videos Videos, training Training, scraper scraper.Scraper, logger logrus.FieldLogger) (*Handler, error) {
	h := newHandler(cfg, videos, training, scraper, logger)

	b, err := tgbot.New(cfg.Token, tgbot.WithDefaultHandler(h.defaultHandler))
	if err != nil {
		h.log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b
	h.registerHandlers()

	h.log.Info("Telegram bot handler initialized")
	return h, nil
}

func newHandler(cfg config.TelegramConfig, videos Videos, training Training, scraper scraper.Scraper, logger logrus.FieldLogger) *Handler {
	return &Handler{
		cfg:      cfg,
		videos:   videos,
		training: training,
		scraper:  scraper,
		log:      logger.WithField("component", "bot_handler"),
	}
}

// registerHandlers sets up the command handlers. Everything else reaches
// the default handler.
func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/collections", tgbot.MatchTypeExact, h.commandHandler(h.listCollections))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/add", tgbot.MatchTypePrefix, h.commandHandler(h.addLink))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/progress", tgbot.MatchTypePrefix, h.commandHandler(h.progress))
	h.log.Info("Registered command handlers")
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

func (h *Handler) send(ctx context.Context, b *tgbot.Bot, update *models.Update, log logrus.FieldLogger, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}

// startHandler handles the /start command.
func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	log := h.log.WithFields(logrus.Fields{
		"chat_id": update.Message.Chat.ID,
		"command": "/start",
	})
	log.Info("Received /start command")
	h.send(ctx, b, update, log, welcomeMessage)
}

// commandHandler adapts a text command to a bot handler. The command word
// is stripped and the remaining arguments are passed on.
func (h *Handler) commandHandler(run func(ctx context.Context, args []string) string) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		fields := strings.Fields(update.Message.Text)
		if len(fields) == 0 {
			return
		}
		log := h.log.WithFields(logrus.Fields{
			"chat_id": update.Message.Chat.ID,
			"command": fields[0],
		})
		log.Debug("Received command")
		h.send(ctx, b, update, log, run(ctx, fields[1:]))
	}
}

// defaultHandler saves the first YouTube link found in a plain message.
func (h *Handler) defaultHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	log := h.log.WithField("chat_id", update.Message.Chat.ID)
	h.send(ctx, b, update, log, h.plainMessage(ctx, update.Message.Text))
}

func (h *Handler) plainMessage(ctx context.Context, text string) string {
	for _, field := range strings.Fields(text) {
		if youtube.IsVideoURL(field) {
			return h.addLink(ctx, []string{field})
		}
	}
	return helpMessage
}

func (h *Handler) listCollections(ctx context.Context, _ []string) string {
	cols, err := h.videos.ListCollections(ctx)
	if err != nil {
		return userMessage(err)
	}
	if len(cols) == 0 {
		return "No collections yet."
	}
	var sb strings.Builder
	sb.WriteString("Collections:\n")
	for _, c := range cols {
		fmt.Fprintf(&sb, "• %s (%d)\n", c.Name, c.LinkCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// addLink saves args[0] to the default collection. The remaining words form
// the title; without them the title is scraped from the page.
func (h *Handler) addLink(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /add <youtube url> [title]"
	}
	url := args[0]
	if !youtube.IsVideoURL(url) {
		return "That doesn't look like a YouTube link."
	}

	title := strings.Join(args[1:], " ")
	if title == "" {
		scraped, err := h.scraper.ScrapeTitle(ctx, url)
		if err != nil {
			h.log.WithError(err).WithField("url", url).Warn("Title scraping failed")
			return "Couldn't read the video title. Try /add <url> <title>."
		}
		title = scraped
	}

	link, err := h.videos.AddLink(ctx, h.cfg.DefaultCollection, url, title, "")
	if err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Saved \"%s\" to %s.", link.Title, h.cfg.DefaultCollection)
}

func (h *Handler) progress(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /progress <month number>"
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return "Month must be a positive number."
	}
	stats, err := h.training.GetProgressStats(ctx, domain.MonthID(n))
	if err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("Month %d: %d/%d tasks (%d%%), %d/%d days (%d%%)",
		n,
		stats.CompletedTasks, stats.TotalTasks, stats.ProgressPercentage,
		stats.CompletedDays, stats.TotalDays, stats.DaysProgressPercentage)
}

func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Something went wrong."
}
