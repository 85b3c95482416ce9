package api

import (
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeResponse is returned by the decode endpoint. Info is set only when
// the result was stored.
type DecodeResponse struct {
	Info   *storage.ResultInfo `json:"info,omitempty"`
	Result *sensors.Result     `json:"result"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind          string
	Port          int
	APIKey        string
	MaxUploadSize int64 // decode request body limit in bytes, 0 disables it
	Strict        bool  // default for ?strict=
	HexPages      bool  // default for ?hex_pages=
}

// IResultStore defines the result store operations used by the API
type IResultStore interface {
	Save(name string, r *sensors.Result) (storage.ResultInfo, error)
	Info(id string) (storage.ResultInfo, error)
	Get(id string) (*sensors.Result, error)
	List() ([]storage.ResultInfo, error)
	Delete(id string) error
}

var _ IResultStore = (*storage.ResultStore)(nil)
