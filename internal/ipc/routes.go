package ipc

import (
	"github.com/labstack/echo/v4"
)

// Each control command is served at /<command>. Status is the only read.
func RegisterRoutes(e *echo.Echo, manager ManagerInterface) {
	e.GET(route(CommandStatus), statusHandler(manager))

	commands := map[CommandType]func(ManagerInterface) echo.HandlerFunc{
		CommandStop:   stopHandler,
		CommandNext:   nextHandler,
		CommandRotate: rotateHandler,
		CommandSource: sourceHandler,
	}
	for cmd, handler := range commands {
		e.POST(route(cmd), handler(manager))
	}
}

func route(cmd CommandType) string {
	return "/" + string(cmd)
}
