package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/o3dstudio/database"
	"github.com/princinho/o3dstudio/quoteform"
	"github.com/princinho/o3dstudio/services"
)

// errorStatus maps domain errors to a status code and a stable error code.
func errorStatus(err error) (int, string) {
	var verr *quoteform.ValidationError
	var ferr *quoteform.FieldError
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, quoteform.ErrDescriptionRequired):
		return http.StatusBadRequest, "description_required"
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_failed"
	case errors.As(err, &ferr), errors.Is(err, quoteform.ErrUnknownField):
		return http.StatusBadRequest, "invalid_field"
	case errors.Is(err, quoteform.ErrAdvisoryInFlight):
		return http.StatusConflict, "advisory_in_flight"
	case errors.Is(err, quoteform.ErrAlreadySubmitted):
		return http.StatusConflict, "already_submitted"
	case errors.Is(err, quoteform.ErrFormClosed):
		return http.StatusNotFound, "form_closed"
	case errors.Is(err, quoteform.ErrNoAdvisor):
		return http.StatusServiceUnavailable, "advisory_unavailable"
	case services.IsMalformed(err):
		return http.StatusBadGateway, "malformed_response"
	case services.IsUpstream(err):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, quoteform.ErrIntakeFailed):
		return http.StatusBadGateway, "submission_failed"
	case errors.Is(err, database.ErrQuoteNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}

func errorBody(err error) gin.H {
	_, code := errorStatus(err)
	body := gin.H{"error": err.Error(), "code": code}
	var verr *quoteform.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	return body
}

func respondError(c *gin.Context, err error) {
	status, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, errorBody(err))
}
