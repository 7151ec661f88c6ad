package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// StatusFor maps an error returned by a use case to an HTTP status.
func StatusFor(err error) int {
	var be BusinessError
	if !errors.As(err, &be) {
		if IsExclusionConflict(err) {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	}

	switch be.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// Respond writes err in the standard error envelope. Store failures are
// logged and hidden behind internal_error.
func Respond(c *gin.Context, err error) {
	status := StatusFor(err)

	var be BusinessError
	switch {
	case errors.As(err, &be):
		Write(c, status, be.Code, Message(be.Code))
	case status == http.StatusConflict:
		Write(c, status, "time_conflict", messages["time_conflict"])
	default:
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("requestID")).
			Msg("request failed")
		Internal(c, "internal_error", "Internal server error.")
	}
}

// Message falls back to the code itself for codes without a text.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}

var messages = map[string]string{
	"time_conflict":            "The requested time overlaps an existing booking.",
	"service_not_found":        "Service not found.",
	"provider_not_found":       "Provider not found.",
	"client_not_found":         "Client not found.",
	"booking_not_found":        "Booking not found.",
	"addon_not_found":          "Add-on not found.",
	"tenant_not_found":         "Tenant not found.",
	"service_not_offered":      "The provider does not offer this service.",
	"outside_availability":     "The requested time is outside the provider's availability.",
	"too_soon":                 "The requested time is too soon or in the past.",
	"no_fields_to_update":      "No valid fields to update.",
	"invalid_status":           "Unknown booking status.",
	"invalid_transition":       "Booking status cannot change that way.",
	"booking_not_active":       "Only pending or confirmed bookings can be rescheduled.",
	"has_active_bookings":      "There are active bookings referencing this record.",
	"invalid_time_window":      "Availability windows need HH:MM start before end.",
	"invalid_timezone":         "Unknown timezone.",
	"nothing_to_pay":           "Booking has no amount to pay.",
	"payments_disabled":        "Online payments are not configured.",
	"media_storage_disabled":   "Media storage is not configured.",
	"invalid_image":            "The uploaded file is not a supported image.",
	"provider_required":        "A provider is required.",
	"invalid_slot_granularity": "Slot granularity must be positive.",
	"invalid_date":             "Dates use the YYYY-MM-DD format.",
	"invalid_datetime":         "Date and time must be RFC3339.",
	"booking_busy":             "Another booking for this provider is being processed, retry.",
	"email_already_used":       "Email already registered.",
	"slug_taken":               "Business slug already in use.",
	"invalid_credentials":      "Invalid email or password.",
	"invalid_addons":           "Add-ons must be unique.",
	"invalid_id":               "Invalid identifier.",
	"invalid_name":             "Name is required.",
	"invalid_slug":             "Slug may only contain lowercase letters, digits and hyphens.",
	"invalid_email_domain":     "Email domain does not accept mail.",
	"invalid_color":            "Color must be #RRGGBB.",
	"invalid_currency":         "Currency must be a 3-letter ISO code.",
	"invalid_min_advance":      "Minimum advance cannot be negative.",
	"invalid_duration":         "Duration must be positive.",
	"invalid_buffer":           "Buffers cannot be negative.",
	"invalid_price":            "Price cannot be negative.",
	"invalid_day_of_week":      "Day of week goes from 0 (Sunday) to 6 (Saturday).",
	"service_required":         "service_id is required.",
	"unavailability_not_found": "Unavailability not found.",
	"user_not_found":           "User not found.",
	"category_not_found":       "Service category not found.",
	"missing_file":             "Upload the image in the avatar field.",
	"file_too_large":           "Images are limited to 5MB.",
}
