package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"drivepro-backend/internal/domain"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.Invalid("date, time and type are required"), http.StatusBadRequest, "date, time and type are required"},
		{domain.Unauthorized("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{domain.Forbidden("Account is inactive"), http.StatusForbidden, "Account is inactive"},
		{fmt.Errorf("wrapped: %w", domain.NotFound("Lesson not found")), http.StatusNotFound, "Lesson not found"},
		{domain.Conflict("Email already in use"), http.StatusConflict, "Email already in use"},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, MsgInternal},
	}
	for _, tc := range cases {
		code, body := FromError(tc.err)
		if code != tc.code || body.Message != tc.msg {
			t.Fatalf("%v: expected %d %q, got %d %q", tc.err, tc.code, tc.msg, code, body.Message)
		}
	}
}
