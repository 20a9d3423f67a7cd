package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fair-invitations/internal/guestlist"
	"fair-invitations/internal/handler"
	"fair-invitations/internal/portal"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, apiResponse{Data: data})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiResponse{Error: &errorBody{
		Code:    code,
		Message: message,
	}})
}

// failErr maps domain errors to HTTP responses
func (h *Handler) failErr(c echo.Context, err error) error {
	var perr *guestlist.ParseError
	switch {
	case errors.As(err, &perr):
		return fail(c, http.StatusUnprocessableEntity, string(perr.Kind), perr.Error())
	case errors.Is(err, handler.ErrTooManyRecipients):
		return fail(c, http.StatusUnprocessableEntity, "too_many_recipients", err.Error())
	case errors.Is(err, handler.ErrDispatchInProgress):
		return fail(c, http.StatusConflict, "dispatch_in_progress", err.Error())
	case errors.Is(err, handler.ErrGuestListBusy):
		return fail(c, http.StatusConflict, "guest_list_busy", err.Error())
	case errors.Is(err, handler.ErrNoExhibition), errors.Is(err, handler.ErrNoTemplate):
		return fail(c, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, portal.ErrTemplateNotFound):
		return fail(c, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, portal.ErrUnauthorized):
		return fail(c, http.StatusBadGateway, "portal_unauthorized", err.Error())
	}

	h.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return fail(c, http.StatusInternalServerError, "internal_error", "internal error")
}
