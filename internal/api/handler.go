package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gonkalabs/piiview/internal/export"
	"github.com/gonkalabs/piiview/internal/session"
	"github.com/gonkalabs/piiview/internal/signer"
	"github.com/gonkalabs/piiview/internal/view"
	"github.com/gonkalabs/piiview/web"
)

// maxUploadBytes caps PDF uploads forwarded to the detection service.
const maxUploadBytes = 20 << 20

// Handler implements all HTTP endpoints.
type Handler struct {
	ctrl   *session.Controller
	signer *signer.Signer // nil when exports are not signed
}

// New creates a Handler around the session controller.
// Pass a non-nil signer to attach signatures to exports.
func New(ctrl *session.Controller, sig *signer.Signer) *Handler {
	return &Handler{ctrl: ctrl, signer: sig}
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /api/analyze", h.analyze)
	mux.HandleFunc("POST /api/mask", h.mask)
	mux.HandleFunc("POST /api/upload-pdf", h.uploadPDF)
	mux.HandleFunc("GET /api/views", h.views)
	mux.HandleFunc("GET /api/export/json", h.exportJSON)
	mux.HandleFunc("GET /api/export/csv", h.exportCSV)
	mux.HandleFunc("GET /", h.serveUI)
}

// ---------- endpoints ----------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type analyzeRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	threshold := -1.0
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			writeErr(w, http.StatusBadRequest, "threshold must be within [0,1]")
			return
		}
		threshold = *req.Threshold
	}

	st, err := h.ctrl.AnalyzeText(r.Context(), req.Text, threshold)
	if err != nil {
		h.fail(w, "analyze", err)
		return
	}
	h.writeViews(w, st, "")
}

func (h *Handler) mask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	masked, err := h.ctrl.Mask(r.Context(), req.Text)
	if err != nil {
		h.fail(w, "mask", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"masked": masked})
}

func (h *Handler) uploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.fail(w, "upload", fmt.Errorf("%w: %v", session.ErrNoDocument, err))
		return
	}
	defer file.Close()

	st, err := h.ctrl.AnalyzeDocument(r.Context(), hdr.Filename, file)
	if err != nil {
		h.fail(w, "upload", err)
		return
	}
	h.writeViews(w, st, "")
}

func (h *Handler) views(w http.ResponseWriter, r *http.Request) {
	h.writeViews(w, h.ctrl.State(), view.Name(r.URL.Query().Get("view")))
}

func (h *Handler) exportJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := export.JSON(h.ctrl.State().Entities)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeDownload(w, export.JSONFilename, "application/json", body)
}

func (h *Handler) exportCSV(w http.ResponseWriter, _ *http.Request) {
	h.writeDownload(w, export.CSVFilename, "text/csv; charset=utf-8", export.CSV(h.ctrl.State().Entities))
}

func (h *Handler) serveUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(web.Index)
}

// ---------- helpers ----------

func (h *Handler) writeViews(w http.ResponseWriter, st session.State, active view.Name) {
	v, err := view.Build(st)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if active != "" {
		if v, err = v.Select(active); err != nil {
			h.fail(w, "views", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, v)
}

// writeDownload sends body as an attachment. With a signer configured the
// signature, signer address and timestamp travel in X-Export-* headers.
func (h *Handler) writeDownload(w http.ResponseWriter, name, contentType string, body []byte) {
	if h.signer != nil {
		sig, err := h.signer.Sign(body)
		if err != nil {
			slog.Error("export signing failed", "file", name, "err", err)
			writeErr(w, http.StatusInternalServerError, "export signing failed")
			return
		}
		w.Header().Set("X-Export-Signature", sig.Value)
		w.Header().Set("X-Export-Signer", sig.Address)
		w.Header().Set("X-Export-Timestamp", strconv.FormatInt(sig.Timestamp, 10))
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fail maps an error to a status code: caller mistakes are 4xx, anything
// else came from the detection service and is a 502.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyText), errors.Is(err, session.ErrNoDocument), errors.Is(err, view.ErrUnknownView):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, view.ErrHighlightUnavailable):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		slog.Error("detector error", "op", op, "err", err)
		writeErr(w, http.StatusBadGateway, "detector error: "+err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
