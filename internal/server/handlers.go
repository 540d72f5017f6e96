package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/ctxlog"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(s.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	if s.tooLarge(r) {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid request body: request too large")
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req api.ConversionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, statusFor(err), fmt.Sprintf("invalid request body: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, s.translate(r.Context(), req))
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if s.tooLarge(r) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("%v: upload exceeds %d bytes", api.ErrBadUpload, s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	src, err := readUpload(r)
	if err != nil {
		writeError(w, statusFor(err), fmt.Sprintf("%v: %v", api.ErrBadUpload, err))
		return
	}
	req := api.ConversionRequest{SourceCode: src, PLCType: r.FormValue("plc_type")}
	writeJSON(w, http.StatusOK, s.translate(r.Context(), req))
}

// readUpload returns the content of the multipart field "file".
func readUpload(r *http.Request) (string, error) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8 text", hdr.Filename)
	}
	return string(data), nil
}

// tooLarge reports a declared body length over the limit. Bodies of unknown
// length are cut by http.MaxBytesReader instead.
func (s *Server) tooLarge(r *http.Request) bool {
	return s.cfg.MaxUploadBytes > 0 && r.ContentLength > s.cfg.MaxUploadBytes
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}
