package api

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type fieldDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseStartError maps an error response to a SessionStartError. It understands
// FastAPI validation bodies ({"detail":[{"loc":[...],"msg":"..."}]}) and plain
// {"detail":"..."} or {"message":"..."} bodies, and falls back to the status text.
func parseStartError(statusCode int, status string, body []byte) *errors.SessionStartError {
	//nolint:exhaustruct
	startErr := &errors.SessionStartError{StatusCode: statusCode, Status: status}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			startErr.Message = text
		}

		return startErr
	}

	if len(parsed.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(parsed.Detail, &detail); err == nil {
			startErr.Message = detail

			return startErr
		}

		var fields []fieldDetail
		if err := json.Unmarshal(parsed.Detail, &fields); err == nil {
			for _, f := range fields {
				startErr.Fields = append(startErr.Fields, errors.FieldError{
					Field:   fieldName(f.Loc),
					Message: f.Msg,
				})
			}

			return startErr
		}
	}

	switch {
	case parsed.Message != "":
		startErr.Message = parsed.Message
	case parsed.Error != "":
		startErr.Message = parsed.Error
	}

	return startErr
}

// fieldName joins a FastAPI location, dropping the leading "body" segment.
func fieldName(loc []any) string {
	parts := make([]string, 0, len(loc))

	for i, segment := range loc {
		s := fmt.Sprint(segment)
		if i == 0 && (s == "body" || s == "query") && len(loc) > 1 {
			continue
		}

		parts = append(parts, s)
	}

	return strings.Join(parts, ".")
}
