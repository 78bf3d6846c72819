package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/short-url/internal/entity"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func handlePing(p pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Ping(r.Context()); err != nil {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, newErrorResponse(http.StatusInternalServerError, "storage is unavailable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "pong")
	}
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error)
	ResolveShortToken(ctx context.Context, shortToken string) (string, error)
	ListShortTokens(ctx context.Context, originalURL string) ([]string, error)
	GetVisitCount(ctx context.Context, shortToken string) (int64, error)
	GetURLDetails(ctx context.Context, shortToken string) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
	}
}

// renderError maps err to its category status. Internal causes are written to the
// request log, the client only sees failedAction.
func renderError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage, failedAction string) {
	switch entity.Classify(err) {
	case entity.ErrInvalidInput:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, newErrorResponse(http.StatusBadRequest, "invalid input"))
	case entity.ErrURLNotFound:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, newErrorResponse(http.StatusNotFound, notFoundMessage))
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, newErrorResponse(http.StatusInternalServerError, failedAction))
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.OriginalURL)
	if err != nil {
		renderError(w, r, err, "", "failed to shorten url")
		return
	}

	render.Status(r, http.StatusOK)
	render.PlainText(w, r, url.ShortToken)
}

func (h *urlHandler) resolveShortToken(w http.ResponseWriter, r *http.Request) {
	shortToken := chi.URLParam(r, "shortToken")

	originalURL, err := h.useCase.ResolveShortToken(r.Context(), shortToken)
	if err != nil {
		renderError(w, r, err, "short url not found: "+shortToken, "failed to resolve short url")
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

func (h *urlHandler) listShortTokens(w http.ResponseWriter, r *http.Request) {
	originalURL := r.URL.Query().Get("originalUrl")

	shortTokens, err := h.useCase.ListShortTokens(r.Context(), originalURL)
	if err != nil {
		renderError(w, r, err, "no short urls found for the original url: "+originalURL, "failed to list short urls")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, shortTokens)
}

func (h *urlHandler) getVisitCount(w http.ResponseWriter, r *http.Request) {
	shortToken := chi.URLParam(r, "shortToken")

	visitCount, err := h.useCase.GetVisitCount(r.Context(), shortToken)
	if err != nil {
		renderError(w, r, err, "short url not found: "+shortToken, "failed to get visit count")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, visitCount)
}

func (h *urlHandler) getURLDetails(w http.ResponseWriter, r *http.Request) {
	shortToken := chi.URLParam(r, "shortToken")

	url, err := h.useCase.GetURLDetails(r.Context(), shortToken)
	if err != nil {
		renderError(w, r, err, "short url not found: "+shortToken, "failed to get url details")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toDetailsResponse(url))
}
