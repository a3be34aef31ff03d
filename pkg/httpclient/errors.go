package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/TuancoderLo/perfumestore/pkg/errors"
)

// upstreamErrorBody covers the error shapes the catalog API is known to
// return: either a bare {"message": "..."} object or an envelope with a
// nested error object.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response from the upstream
// catalog API and translates it into the storefront error taxonomy. Server
// messages from 4xx replies (for example a duplicate-review rejection) are
// preserved verbatim when present; otherwise a generic fallback is used.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.UpstreamUnavailable(
			fmt.Errorf("%s: status %d, body unreadable: %w", operation, resp.StatusCode, err))
	}

	message := extractMessage(bodyBytes)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: messageOr(message, "the requested resource was not found"),
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(messageOr(message, "authentication required"))
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(messageOr(message, "you do not have permission to perform this action"))
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(messageOr(message, "conflict"))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &apperrors.AppError{
			Code:    "VALIDATION_ERROR",
			Message: messageOr(message, "the request was rejected"),
			Status:  resp.StatusCode,
			Err:     apperrors.ErrInvalidInput,
		}
	default:
		return apperrors.UpstreamUnavailable(
			fmt.Errorf("%s: upstream returned status %d", operation, resp.StatusCode))
	}
}

// extractMessage pulls a human-readable message out of an upstream error
// body, returning "" when the body is not structured JSON.
func extractMessage(body []byte) string {
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return parsed.Message
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
