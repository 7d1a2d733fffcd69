// Package response
package response

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Meta    any               `json:"meta,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type ResponseWriter interface {
	Write(w http.ResponseWriter, status int, res *Response)
	WriteValidationError(w http.ResponseWriter, errs map[string]string)
}

type JSONWriter struct{}

func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

func (j *JSONWriter) Write(w http.ResponseWriter, status int, res *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func (j *JSONWriter) WriteValidationError(w http.ResponseWriter, errs map[string]string) {
	j.Write(w, http.StatusUnprocessableEntity, &Response{
		Message: "validation failed",
		Errors:  errs,
	})
}
