package api

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/courtquote/internal/adapters/render"
)

// IdempotencyHeader carries the client chosen retry key.
const IdempotencyHeader = "Idempotency-Key"

// ReplayedHeader is set on responses that replay an earlier submission.
const ReplayedHeader = "Idempotent-Replayed"

var quotationNumberPattern = regexp.MustCompile(`^[A-Za-z]+\d{6,}$`)

// QuotationHandler handles quotation requests.
type QuotationHandler struct {
	deps         QuotationDependencies
	maxBodyBytes int64
	defaultLimit int
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(deps QuotationDependencies, opts ...Option) *QuotationHandler {
	h := &QuotationHandler{
		deps:         deps,
		maxBodyBytes: DefaultMaxBodyBytes,
		defaultLimit: DefaultListLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleCreate handles POST /quotations requests.
func (h *QuotationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_quotation"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, r, op, NewKind(op, ErrBodyTooLarge))
			return
		}
		writeFailure(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	q, replayed, err := h.deps.Submit(r.Context(), body, key)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if replayed {
		w.Header().Set(ReplayedHeader, "true")
		writeJSON(w, http.StatusOK, q)
		return
	}
	w.Header().Set("Location", "/quotations/"+q.QuotationNumber)
	writeJSON(w, http.StatusCreated, q)
}

// HandleList handles GET /quotations?limit=N requests.
func (h *QuotationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_quotations"

	limit := h.defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeFailure(w, r, op, NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	list, err := h.deps.List(r.Context(), limit)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /quotations/{number} requests.
func (h *QuotationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_quotation"

	number, err := pathNumber(r)
	if err != nil {
		writeFailure(w, r, op, WrapKind(op, ErrQuotationPath, err))
		return
	}
	q, err := h.deps.Get(r.Context(), number)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// HandleDocument handles GET /quotations/{number}/document?format=pdf|xlsx requests.
func (h *QuotationHandler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_document"

	number, err := pathNumber(r)
	if err != nil {
		writeFailure(w, r, op, WrapKind(op, ErrQuotationPath, err))
		return
	}
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}

	doc, err := h.deps.Document(r.Context(), number, format)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+number+"."+string(format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func pathNumber(r *http.Request) (string, error) {
	number := strings.TrimSpace(r.PathValue("number"))
	if !quotationNumberPattern.MatchString(number) {
		return "", errors.New(strconv.Quote(number))
	}
	return number, nil
}
