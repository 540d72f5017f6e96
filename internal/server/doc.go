// Package server exposes the translator over HTTP and socket.io.
//
// Routes:
//
//	POST /api/convert         JSON ConversionRequest -> ConversionResponse
//	POST /api/upload-convert  multipart field "file" -> ConversionResponse
//	GET  /health              plain "OK"
//	/socket.io/               event "translate" -> event "translation"
//
// Every route sits behind the CORS allow-list, request logging and panic
// recovery. Each translation runs with its own Translator under the
// configured timeout.
package server
