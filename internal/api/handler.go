// Package api exposes the ingestion and reconciliation operations over HTTP.
package api

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kasbuku/statement-recon/internal/buildinfo"
	"github.com/kasbuku/statement-recon/internal/extractor"
	"github.com/kasbuku/statement-recon/internal/ledger"
	"github.com/kasbuku/statement-recon/internal/recon"
	"github.com/kasbuku/statement-recon/internal/statement"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Store    *ledger.Store
	Recon    *recon.Service
	Currency string
	Log      zerolog.Logger
}

// ImportResponse is the JSON response from the statement upload endpoint.
type ImportResponse struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	ErrorKind   string             `json:"errorKind,omitempty"`
	StatementID string             `json:"statementId,omitempty"`
	Summary     *statement.Summary `json:"summary,omitempty"`
	Count       int                `json:"count"`
}

// App builds the fiber application with all routes registered.
func (h *Handler) App() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    32 << 20,
		ErrorHandler: h.errorHandler,
	})

	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/statements", h.HandleImport)
	app.Get("/api/lines", h.HandleListLines)
	app.Post("/api/lines/suggest", h.HandleSuggestAll)
	app.Post("/api/lines/:id/suggest", h.HandleSuggest)
	app.Post("/api/lines/:id/confirm", h.HandleConfirm)
	app.Post("/api/lines/:id/reject", h.HandleReject)
	app.Post("/api/lines/:id/record", h.HandleRecord)
	app.Post("/api/lines/:id/reset", h.HandleReset)
	app.Post("/api/entries", h.HandleInsertEntry)

	return app
}

func (h *Handler) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// HandleImport accepts a multipart statement upload, parses it and persists
// the result atomically. The response distinguishes a wrong file (4xx with a
// typed error kind) from an internal failure (5xx).
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			Success: false, Error: "No file uploaded. Use form field 'file'.",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			Success: false, Error: "Could not read uploaded file.",
		})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			Success: false, Error: "Could not read uploaded file.",
		})
	}

	media := mediaTypeFor(c.FormValue("media"), fileHeader.Filename)
	currency := c.FormValue("currency")
	if currency == "" {
		currency = h.Currency
	}

	sum, err := statement.Parse(statement.RawDocument{Data: data, MediaType: media}, currency)
	if err != nil {
		return h.parseFailure(c, err)
	}

	id, err := h.Store.ImportStatement(c.Context(), sum)
	if err != nil {
		h.Log.Error().Err(err).Msg("statement import failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ImportResponse{
			Success: false, Error: "Failed to persist statement.",
			ErrorKind: string(statement.KindPersistence),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(ImportResponse{
		Success:     true,
		StatementID: id,
		Summary:     sum,
		Count:       len(sum.Transactions),
	})
}

func (h *Handler) parseFailure(c *fiber.Ctx, err error) error {
	var perr *statement.ParseError
	if !errors.As(err, &perr) {
		h.Log.Error().Err(err).Msg("statement parse failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ImportResponse{
			Success: false, Error: err.Error(),
		})
	}

	status := fiber.StatusInternalServerError
	switch perr.Kind {
	case statement.KindUnsupportedDocument:
		status = fiber.StatusUnsupportedMediaType
	case statement.KindInsufficientText, statement.KindNoTransactions:
		status = fiber.StatusUnprocessableEntity
	}

	h.Log.Warn().
		Str("kind", string(perr.Kind)).
		Str("strategy", perr.Diagnostics.Strategy).
		Int("text_length", perr.Diagnostics.TextLength).
		Strs("keywords_seen", perr.Diagnostics.KeywordsSeen).
		Msg("statement rejected")

	return c.Status(status).JSON(ImportResponse{
		Success:   false,
		Error:     perr.Message,
		ErrorKind: string(perr.Kind),
	})
}

func (h *Handler) HandleListLines(c *fiber.Ctx) error {
	status := ledger.Status(c.Query("status"))
	if status != "" && !ledger.ValidStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "unknown status filter " + string(status),
		})
	}

	lines, err := h.Store.ListLines(c.Context(), status)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []ledger.Line{}
	}
	return c.JSON(fiber.Map{"success": true, "lines": lines, "count": len(lines)})
}

func (h *Handler) HandleSuggest(c *fiber.Ctx) error {
	cand, ok, err := h.Recon.Suggest(c.Context(), c.Params("id"))
	if err != nil {
		return h.transitionFailure(c, err)
	}
	if !ok {
		return c.JSON(fiber.Map{"success": true, "suggested": false})
	}
	return c.JSON(fiber.Map{"success": true, "suggested": true, "candidate": cand})
}

func (h *Handler) HandleSuggestAll(c *fiber.Ctx) error {
	cands, err := h.Recon.SuggestAll(c.Context())
	if err != nil {
		return err
	}
	if cands == nil {
		cands = []recon.Candidate{}
	}
	return c.JSON(fiber.Map{"success": true, "candidates": cands, "count": len(cands)})
}

func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	if err := h.Recon.Confirm(c.Context(), c.Params("id")); err != nil {
		return h.transitionFailure(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleReject(c *fiber.Ctx) error {
	if err := h.Recon.Reject(c.Context(), c.Params("id")); err != nil {
		return h.transitionFailure(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) HandleRecord(c *fiber.Ctx) error {
	entryID, err := h.Recon.Record(c.Context(), c.Params("id"))
	if err != nil {
		return h.transitionFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "entryId": entryID})
}

func (h *Handler) HandleReset(c *fiber.Ctx) error {
	if err := h.Recon.Reset(c.Context(), c.Params("id")); err != nil {
		return h.transitionFailure(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type insertEntryRequest struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
}

// HandleInsertEntry feeds an externally recorded expense or receipt into the
// ledger so the matcher can see it.
func (h *Handler) HandleInsertEntry(c *fiber.Ctx) error {
	var req insertEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid JSON body",
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "date must be YYYY-MM-DD",
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "amount must be a positive decimal",
		})
	}
	dir := ledger.Direction(req.Direction)
	if dir != ledger.DirectionExpense && dir != ledger.DirectionReceipt {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "direction must be expense or receipt",
		})
	}

	id, err := h.Store.InsertEntry(c.Context(), ledger.Entry{
		Date:        date,
		Amount:      amount,
		Direction:   dir,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "entryId": id})
}

func (h *Handler) transitionFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, ledger.ErrStale):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return err
}

// mediaTypeFor resolves the declared media field, falling back to the upload
// filename extension.
func mediaTypeFor(declared, filename string) extractor.MediaType {
	if declared != "" {
		return extractor.MediaType(strings.ToLower(declared))
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractor.MediaPDF
	case ".csv", ".tsv", ".txt", ".xls", ".xlsx":
		return extractor.MediaSpreadsheet
	}
	return extractor.MediaType(strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."))
}
