package ipc

import "time"

// Route paths served on the socket.
const (
	RouteUI     = "/ui"
	RouteStatus = "/status"
)

// StatusResponse represents daemon status information.
type StatusResponse struct {
	Running      bool      `json:"running"`
	PID          int       `json:"pid"`
	SocketPath   string    `json:"socket_path"`
	DatabasePath string    `json:"database_path"`
	LockPath     string    `json:"lock_path"`
	Windows      int       `json:"windows"`
	StartedAt    time.Time `json:"started_at,omitzero"`
}

// StatusFunc reports current daemon status.
type StatusFunc func() StatusResponse
