// Package client talks to a running stladder server, either over the HTTP
// API (resty) or over socket.io.
package client
