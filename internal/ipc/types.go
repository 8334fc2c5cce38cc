package ipc

import (
	"github.com/matjam/camview/internal/scheduler"
	"github.com/matjam/camview/internal/types"
)

type CommandType string

const (
	CommandStop   CommandType = "stop"
	CommandNext   CommandType = "next"
	CommandRotate CommandType = "rotate"
	CommandSource CommandType = "source"
	CommandStatus CommandType = "status"
)

type Command struct {
	Type CommandType `json:"type"`
	Args []string    `json:"args"`
}

type ManagerInterface interface {
	Status() PreviewStatus
	EnqueueCommand(Command)
}

// PreviewStatus is the manager's view of the running pipeline.
type PreviewStatus struct {
	Source         string          `json:"source"`
	Current        string          `json:"current,omitempty"`
	Display        string          `json:"display"`
	Orientation    string          `json:"orientation"`
	Rotation       int             `json:"rotation"`
	Surface        types.Size      `json:"surface"`
	Frame          types.Size      `json:"frame"`
	PreviewTexture uint32          `json:"preview_texture"`
	Scheduler      scheduler.Stats `json:"scheduler"`
}

type StatusResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Version string        `json:"version"`
	PID     int           `json:"pid"`
	Socket  string        `json:"socket"`
	Config  string        `json:"config"`
	Preview PreviewStatus `json:"preview"`
}

type RotateRequest struct {
	Degrees int `json:"degrees"`
}

type SourceRequest struct {
	Source string `json:"source"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
