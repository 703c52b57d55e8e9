package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"ahkneemay/application/commands"
	"ahkneemay/application/commands/bus"
	"ahkneemay/application/queries"
	querybus "ahkneemay/application/queries/bus"
	"ahkneemay/application/services"
	"ahkneemay/domain/core/valueobjects"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/common"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MsgImageTooLarge is returned when the upload exceeds the body limit
const MsgImageTooLarge = "The image is too large."

// multipartOverhead leaves room for the text fields next to the image
const multipartOverhead = 64 << 10

// AnimeHandler handles the anime list endpoints
type AnimeHandler struct {
	commandBus     *bus.CommandBus
	queryBus       *querybus.QueryBus
	quickInfo      *services.QuickInfoService
	errHandler     *pkgerrors.ErrorHandler
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAnimeHandler creates a new anime handler
func NewAnimeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	quickInfo *services.QuickInfoService,
	errHandler *pkgerrors.ErrorHandler,
	maxUploadBytes int64,
	logger *zap.Logger,
) *AnimeHandler {
	return &AnimeHandler{
		commandBus:     commandBus,
		queryBus:       queryBus,
		quickInfo:      quickInfo,
		errHandler:     errHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListAnimes handles GET /api/animes
func (h *AnimeHandler) ListAnimes(w http.ResponseWriter, r *http.Request) {
	query := queries.ListEntriesQuery{Owner: auth.Username(r.Context())}

	result, err := querybus.Ask[*queries.ListEntriesResult](r.Context(), h.queryBus, query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// AddAnime handles POST /api/animes. The form is multipart with the cover
// in the "image" field.
func (h *AnimeHandler) AddAnime(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			appErr := pkgerrors.NewValidationError(MsgImageTooLarge)
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			h.errHandler.Handle(w, r, appErr)
			return
		}
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError(commands.MsgTitleAndImageRequired).WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	cmd := commands.AddOrUpdateEntryCommand{
		Owner:     auth.Username(r.Context()),
		Title:     r.FormValue("title"),
		Publisher: r.FormValue("publisher"),
		Author:    r.FormValue("author"),
		Year:      r.FormValue("year"),
		Seasons:   r.FormValue("seasons"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		cmd.Image = &valueobjects.Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile):
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError(commands.MsgTitleAndImageRequired).WithCause(err))
		return
	}

	message, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, message)
}

// RemoveAnime handles DELETE /api/animes/{title} and the legacy
// GET /api/animes/delete/{title}
func (h *AnimeHandler) RemoveAnime(w http.ResponseWriter, r *http.Request) {
	title, err := pathParam(r, "title")
	if err != nil {
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError(commands.MsgTitleRequired))
		return
	}

	cmd := commands.RemoveEntryCommand{
		Owner: auth.Username(r.Context()),
		Title: title,
	}

	message, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, message)
}

// QuickInfo handles GET /api/animes/quickinfo/{anime}
func (h *AnimeHandler) QuickInfo(w http.ResponseWriter, r *http.Request) {
	show, err := pathParam(r, "anime")
	if err != nil {
		show = ""
	}

	info, err := h.quickInfo.Lookup(r.Context(), show)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondText(w, http.StatusOK, info)
}

// pathParam returns a decoded URL parameter. chi matches on the raw path only
// when the request has one, otherwise the parameter is already decoded.
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}
