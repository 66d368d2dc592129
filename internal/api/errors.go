package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baxromumarov/upfolio/internal/core"
	"github.com/baxromumarov/upfolio/internal/scraper"
	"github.com/baxromumarov/upfolio/internal/store"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid_request", "Request body is required")
		} else {
			respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		}
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// respondErr maps service errors onto HTTP statuses.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		aiErr      *core.AIError
		invalidURL *urlutil.InvalidURLError
		userFacing scraper.UserFacing
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "conflict", "Already exists")
	case errors.Is(err, store.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", "That change is not allowed in the resume's current state")
	case errors.Is(err, store.ErrInsufficientCredits):
		respondError(w, http.StatusPaymentRequired, "insufficient_credits", "Not enough credits. Credits refill daily.")
	case errors.Is(err, core.ErrNoResume):
		respondError(w, http.StatusBadRequest, "no_resume", "Add a resume before using the job assistant")
	case errors.Is(err, core.ErrMissingJobInput),
		errors.Is(err, core.ErrDescriptionTooShort),
		errors.Is(err, core.ErrResumeTooShort),
		errors.Is(err, core.ErrEmptyMessage),
		errors.Is(err, core.ErrMessageTooLong):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &aiErr):
		s.logger.Error("ai call failed", "op", aiErr.Op, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusBadGateway, "ai_unavailable", aiErr.UserMessage())
	case errors.As(err, &invalidURL):
		respondError(w, http.StatusBadRequest, "invalid_url", invalidURL.UserMessage())
	case errors.As(err, &userFacing):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:               scraper.UserMessage(err),
			Code:                "scrape_failed",
			ManualInputRequired: true,
		})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "Something went wrong")
	}
}
