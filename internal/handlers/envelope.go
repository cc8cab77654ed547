package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the uniform envelope every operation returns to the UI shell.
// The field names are the wire contract between the backend and the UI
// process and must not change.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func succeeded() Response {
	return Response{Success: true}
}

// respondError wraps any failure into the envelope. Business failures travel
// in the envelope with HTTP 200; the status code is not part of the contract.
func respondError(c echo.Context, err error) error {
	return c.JSON(http.StatusOK, Response{Error: err.Error()})
}

// respondBadRequest handles unparseable request bodies.
func respondBadRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
}
