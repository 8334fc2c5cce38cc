package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/matjam/camview/internal/middleware"
)

const socketName = "camview.sock"

// SocketPath is the control socket under $XDG_RUNTIME_DIR, or the temp dir
// when it is unset.
func SocketPath() string {
	sockDir := os.Getenv("XDG_RUNTIME_DIR")
	if sockDir == "" {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, socketName)
}

// NewServer returns an echo instance with the control routes registered.
func NewServer(manager ManagerInterface) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CharmLog())

	RegisterRoutes(e, manager)
	return e
}

// Start serves the control socket until ctx is done. A stale socket file is
// removed first, and the socket is removed again on return.
func Start(ctx context.Context, manager ManagerInterface) error {
	sockPath := SocketPath()
	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", sockPath, err)
	}
	defer os.Remove(sockPath)

	e := NewServer(manager)
	e.Listener = listener

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Debugf("Socket server shutdown: %v", err)
		}
	}()

	log.Infof("Listening on %s", sockPath)
	if err := e.StartServer(e.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("socket server error: %w", err)
	}
	return nil
}
