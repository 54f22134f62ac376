// Package iojson holds helpers for JSON input and output on the
// command line: pretty-printed output to stdout and structured errors
// to stderr.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the envelope written to stderr when a command that promised
// JSON output fails.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// fallbackError builds an error blob by hand for the case where
// marshaling itself failed. Fields are marshaled individually so the
// strings are still properly escaped.
func fallbackError(msg string, jsonErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// WriteError writes an [Error] with the given message and data to
// stderr as indented JSON.
func WriteError(msg string, data map[string]any) error {
	out := Error{Message: msg, Data: data}

	bits, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(os.Stderr, fallbackError(msg, err))
		return werr
	}

	_, err = fmt.Fprintln(os.Stderr, string(bits))
	return err
}

// WriteWith writes obj to w as indented JSON, reporting marshal
// failures on ew.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(ew, fallbackError("error marshaling output", err))
		return werr
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls [WriteWith] with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}
