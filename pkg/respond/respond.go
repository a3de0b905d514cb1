// Package respond writes command results as indented JSON.
package respond

import (
	"encoding/json"
	"io"
)

type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func Error(w io.Writer, kind, message string) error {
	return JSON(w, ErrorBody{Error: message, Kind: kind})
}
