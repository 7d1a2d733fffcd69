package http

import (
	"errors"
	"net/http"
	"time"

	"horizonx-machine/internal/adapters/http/request"
	"horizonx-machine/internal/adapters/http/response"
	"horizonx-machine/internal/adapters/http/validator"
	"horizonx-machine/internal/domain"
)

type AuthHandler struct {
	svc domain.AuthService

	decoder   request.RequestDecoder
	writer    response.ResponseWriter
	validator validator.Validator
}

func NewAuthHandler(
	svc domain.AuthService,
	d request.RequestDecoder,
	w response.ResponseWriter,
	v validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		svc:       svc,
		decoder:   d,
		writer:    w,
		validator: v,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.LoginRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: err.Error(),
		})
		return
	}

	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.writer.WriteValidationError(w, errs)
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.writer.Write(w, http.StatusUnauthorized, &response.Response{
				Message: "invalid credentials",
			})
			return
		}

		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to sign in",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  time.Unix(res.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: res,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	h.writer.Write(w, http.StatusOK, &response.Response{})
}
