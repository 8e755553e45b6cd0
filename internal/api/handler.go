package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logger"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
	"github.com/insightdelivered/statement-extractor/internal/statement"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const localsRequestID = "request_id"

// LoadFunc materializes an uploaded PDF.
type LoadFunc func(data []byte) (*models.Document, error)

// DetectResponse is the JSON response from the /api/detect endpoint.
type DetectResponse struct {
	IsDigital     bool  `json:"is_digital"`
	Pages         int   `json:"pages"`
	StatementYear *int  `json:"statement_year"`
	HistoryPages  []int `json:"history_pages"`
}

// ErrorResponse is returned by every endpoint on failure.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler serves statement extraction over HTTP. Results are cached by
// upload content, strategy and output format.
type Handler struct {
	Options statement.Options
	Load    LoadFunc
	Cache   *cache.Cache
	Logger  zerolog.Logger
	Version string
}

// NewHandler returns a Handler reading uploads with the PDF reader and
// caching results for ttl.
func NewHandler(opts statement.Options, ttl time.Duration, logger zerolog.Logger, version string) *Handler {
	return &Handler{
		Options: opts,
		Load:    extractor.LoadBytes,
		Cache:   cache.New(ttl, 2*ttl),
		Logger:  logger,
		Version: version,
	}
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-extractor",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(recover.New())
	app.Use(h.requestContext)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/detect", h.HandleDetect)
	app.Post("/api/extract", h.HandleExtract)
}

// requestContext tags each request with an ID and a logger carrying it.
func (h *Handler) requestContext(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals(localsRequestID, id)

	reqLog := logger.WithFields(h.Logger, map[string]interface{}{
		"request_id": id,
		"path":       c.Path(),
	})
	c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))
	return c.Next()
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleDetect reports whether the uploaded statement is digital, its
// statement year and which pages carry transaction history.
func (h *Handler) HandleDetect(c *fiber.Ctx) error {
	data, err := uploadedPDF(c)
	if err != nil {
		return err
	}

	doc, err := h.Load(data)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	info := parser.Detect(doc)
	history := parser.HistoryPages(doc)
	if history == nil {
		history = []int{}
	}
	return c.JSON(DetectResponse{
		IsDigital:     info.IsDigital,
		Pages:         info.Pages,
		StatementYear: info.StatementYear,
		HistoryPages:  history,
	})
}

// HandleExtract runs the full extraction on the uploaded statement. The
// optional form fields are "strategy" (text or layout) and "format" (json
// or csv).
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	log := logger.FromContext(c.UserContext())

	data, err := uploadedPDF(c)
	if err != nil {
		return err
	}

	strategy, err := parser.ParseStrategy(c.FormValue("strategy", string(h.Options.Strategy)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	format := strings.ToLower(c.FormValue("format", "json"))
	if format != "json" && format != "csv" {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unknown format: %q. Use json or csv.", format))
	}

	key := cacheKey(data, strategy, format)
	if cached, found := h.Cache.Get(key); found {
		log.Debug().Str("cache_key", key).Msg("serving cached extraction")
		c.Set("X-Cache", "HIT")
		return sendBody(c, format, cached.([]byte))
	}

	doc, err := h.Load(data)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	opts := h.Options
	opts.Strategy = strategy
	opts.Logger = log
	ex, err := statement.New(opts)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := ex.Extract(doc)
	if errors.Is(err, statement.ErrNotDigital) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Document has no extractable text; scanned statements are not supported.")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Extraction failed: %v", err))
	}

	var buf bytes.Buffer
	if format == "csv" {
		err = (&writer.CSVWriter{IncludeHeader: true}).Write(&buf, result)
	} else {
		err = (&writer.JSONWriter{}).Write(&buf, result)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	log.Info().
		Int("accounts", len(result.Accounts)).
		Int("transactions", result.TransactionCount()).
		Msg("extracted statement")

	h.Cache.SetDefault(key, buf.Bytes())
	c.Set("X-Cache", "MISS")
	return sendBody(c, format, buf.Bytes())
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	rid, _ := c.Locals(localsRequestID).(string)
	if code >= fiber.StatusInternalServerError {
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Int("status", code).Msg("request failed")
	}
	return c.Status(code).JSON(ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		RequestID: rid,
	})
}

// uploadedPDF reads the multipart "file" field.
func uploadedPDF(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	f, err := header.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	return data, nil
}

func sendBody(c *fiber.Ctx, format string, body []byte) error {
	if format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	}
	return c.Send(body)
}

func cacheKey(data []byte, strategy parser.Strategy, format string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + string(strategy) + ":" + format
}
