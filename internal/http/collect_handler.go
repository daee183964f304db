package http

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"weblytics/internal/events"
)

const msgEventRecorded = "Event recorded successfully"

// CollectHandler serves the public ingestion endpoints. Ingestion is
// deliberately forgiving: malformed bodies, filtered noise and storage
// failures all produce the same success acknowledgement, so tracking
// snippets embedded in third-party pages never surface errors to
// visitors. Problems are logged server-side instead.
type CollectHandler struct {
	store    *events.Store
	enricher *events.Enricher
	logger   *slog.Logger
}

func NewCollectHandler(store *events.Store, enricher *events.Enricher, logger *slog.Logger) *CollectHandler {
	return &CollectHandler{store: store, enricher: enricher, logger: logger}
}

type pageviewParams struct {
	URL string `json:"url"`
}

type anchorClickParams struct {
	SourceURL string `json:"source_url"`
	TargetURL string `json:"target_url"`
	Type      string `json:"type"`
}

type queryExecutionParams struct {
	Contents string `json:"contents"`
}

// Pageview handles POST /collect/pageview.
func (h *CollectHandler) Pageview(c *fiber.Ctx) error {
	var params pageviewParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Failed to parse pageview body", slog.Any("error", err))
	}

	visit, parsed := h.enricher.Enrich(rawRequest(c))
	if reason, drop := events.DiscardReason(params.URL, visit.UserAgent, parsed); drop {
		h.logger.Info("Discarded pageview",
			slog.String("reason", reason),
			slog.String("url", params.URL))
		return h.ack(c, visit.SessionID)
	}

	pv := &events.Pageview{
		Visit:       visit,
		URL:         params.URL,
		ReferrerURL: c.Get("Referer"),
	}
	if err := h.store.AppendPageview(pv); err != nil {
		h.logger.Error("Failed to store pageview", slog.Any("error", err))
	}
	return h.ack(c, visit.SessionID)
}

// AnchorClick handles POST /collect/anchor-click.
func (h *CollectHandler) AnchorClick(c *fiber.Ctx) error {
	var params anchorClickParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Failed to parse anchor click body", slog.Any("error", err))
	}

	visit, parsed := h.enricher.Enrich(rawRequest(c))
	if reason, drop := events.DiscardReason(params.SourceURL, visit.UserAgent, parsed); drop {
		h.logger.Info("Discarded anchor click",
			slog.String("reason", reason),
			slog.String("source_url", params.SourceURL))
		return h.ack(c, visit.SessionID)
	}

	ac := &events.AnchorClick{
		Visit:     visit,
		SourceURL: params.SourceURL,
		TargetURL: params.TargetURL,
		ClickType: params.Type,
	}
	if err := h.store.AppendAnchorClick(ac); err != nil {
		h.logger.Error("Failed to store anchor click", slog.Any("error", err))
	}
	return h.ack(c, visit.SessionID)
}

// QueryExecution handles POST /collect/query-execution.
func (h *CollectHandler) QueryExecution(c *fiber.Ctx) error {
	var params queryExecutionParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Failed to parse query execution body", slog.Any("error", err))
	}

	visit, parsed := h.enricher.Enrich(rawRequest(c))
	// Query executions carry no URL, so only the user-agent checks apply.
	if reason, drop := events.DiscardReason("", visit.UserAgent, parsed); drop {
		h.logger.Info("Discarded query execution", slog.String("reason", reason))
		return h.ack(c, visit.SessionID)
	}

	qe := &events.QueryExecution{
		Visit:    visit,
		Contents: params.Contents,
	}
	if err := h.store.AppendQueryExecution(qe); err != nil {
		h.logger.Error("Failed to store query execution", slog.Any("error", err))
	}
	return h.ack(c, visit.SessionID)
}

func (h *CollectHandler) ack(c *fiber.Ctx, sessionID string) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":     http.StatusOK,
		"message":    msgEventRecorded,
		"session_id": sessionID,
	})
}

func rawRequest(c *fiber.Ctx) events.RawRequest {
	return events.RawRequest{
		IPAddress: clientIP(c),
		UserAgent: c.Get("User-Agent"),
		SessionID: c.Get("Session-Id"),
	}
}

// clientIP prefers the first X-Forwarded-For entry, then fiber's own
// remote-address resolution.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	return c.IP()
}
