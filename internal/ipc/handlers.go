package ipc

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/matjam/camview"
	"github.com/spf13/viper"
)

// GET /status
func statusHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:  "ok",
			Message: "camview is running",
			Version: strings.Trim(camview.Version, "\n\r "),
			PID:     os.Getpid(),
			Socket:  SocketPath(),
			Config:  viper.ConfigFileUsed(),
			Preview: m.Status(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(Command{Type: CommandStop})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /next
func nextHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(Command{Type: CommandNext})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /rotate
func rotateHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req RotateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Error: "invalid JSON rotate request"})
		}

		m.EnqueueCommand(Command{
			Type: CommandRotate,
			Args: []string{strconv.Itoa(req.Degrees)},
		})
		return c.JSON(http.StatusOK, Response{Status: "ok", Message: "rotating to " + strconv.Itoa(req.Degrees)})
	}
}

// POST /source
func sourceHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SourceRequest
		if err := c.Bind(&req); err != nil || req.Source == "" {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Error: "invalid JSON source request"})
		}

		m.EnqueueCommand(Command{
			Type: CommandSource,
			Args: []string{req.Source},
		})
		return c.JSON(http.StatusOK, Response{Status: "ok", Message: "switching to " + req.Source})
	}
}
