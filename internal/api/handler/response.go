package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the success body shared by every /api route.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func respondOK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondList(c echo.Context, data any, count int) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Data     any    `json:"data,omitempty"`
	NodeType string `json:"nodeType,omitempty"`
}
