package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testOwner = "auth0|owner-1"

// newContext builds an echo context for a request made by ownerID. An empty
// ownerID leaves the request unauthenticated.
func newContext(method, target, body, ownerID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if ownerID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.OwnerIDKey, ownerID))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParams(c echo.Context, pairs ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, field string) ProblemDetails {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	problem := decodeBody[ProblemDetails](t, rec)
	require.Equal(t, status, problem.Status)
	if field != "" {
		require.Len(t, problem.Errors, 1)
		require.Equal(t, field, problem.Errors[0].Field)
	}
	return problem
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
