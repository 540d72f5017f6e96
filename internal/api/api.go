// Package api defines the JSON contract shared by the HTTP server, the
// socket.io channel, the clients and the CLI's json output, and the policy
// that decides whether a translation succeeded.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/ladder"
	"github.com/vk/stladder/internal/translator"
)

// ConversionRequest is the body of POST /api/convert and of the socket.io
// "translate" event.
type ConversionRequest struct {
	SourceCode string         `json:"source_code"`
	PLCType    string         `json:"plc_type,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// ConversionResponse is the translation outcome as sent to clients.
type ConversionResponse struct {
	Success        bool                         `json:"success"`
	LadderData     LadderData                   `json:"ladder_data"`
	DeviceMap      map[string]map[string]string `json:"device_map"`
	Errors         []string                     `json:"errors"`
	Warnings       []string                     `json:"warnings"`
	ProcessingTime float64                      `json:"processing_time"`
}

// LadderData is the ladder program.
type LadderData struct {
	Rungs    []Rung   `json:"rungs"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the generated program.
type Metadata struct {
	PLCType     string    `json:"plc_type"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Rung is one rung of the program.
type Rung struct {
	Number   int       `json:"number"`
	Line     int       `json:"line"`
	Elements []Element `json:"elements"`
}

// Element is a contact or a coil. IsNormallyOpen is only set for contacts.
type Element struct {
	Type           string `json:"type"`
	Address        string `json:"address"`
	Variable       string `json:"variable"`
	Description    string `json:"description"`
	IsNormallyOpen *bool  `json:"isNormallyOpen,omitempty"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Column         int    `json:"column"`
	Row            int    `json:"row"`
}

// ErrorResponse is returned with 4xx and 5xx statuses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// OptionUnwrapPrograms is the request option that translates PROGRAM bodies.
const OptionUnwrapPrograms = "unwrap_programs"

// TranslatorOptions merges the request onto base.
func (r ConversionRequest) TranslatorOptions(base translator.Options) translator.Options {
	opts := base
	if r.PLCType != "" {
		opts.TargetFamily = r.PLCType
	}
	if v, ok := r.Options[OptionUnwrapPrograms].(bool); ok {
		opts.UnwrapPrograms = v
	}
	return opts
}

// Succeeded is the success policy: no fatal failure, and either at least one
// rung or no errors at all.
func Succeeded(res *translator.Result, err error) bool {
	if err != nil || res == nil {
		return false
	}
	return len(res.Program.Rungs) > 0 || len(res.Diagnostics.Errors) == 0
}

// FromResult builds the response for a finished translation.
func FromResult(res *translator.Result, elapsed time.Duration) ConversionResponse {
	resp := ConversionResponse{
		Success: Succeeded(res, nil),
		LadderData: LadderData{
			Rungs: make([]Rung, 0, len(res.Program.Rungs)),
			Metadata: Metadata{
				PLCType:     res.Program.Metadata.TargetPLCFamily,
				GeneratedAt: res.Program.Metadata.GeneratedAt,
			},
		},
		DeviceMap:      DeviceMap(res.Devices),
		Errors:         res.Diagnostics.ErrorStrings(),
		Warnings:       res.Diagnostics.WarningStrings(),
		ProcessingTime: elapsed.Seconds(),
	}
	for _, r := range res.Program.Rungs {
		resp.LadderData.Rungs = append(resp.LadderData.Rungs, fromRung(r))
	}
	return resp
}

// Failure builds the response for a translation that could not run.
func Failure(plcType string, err error, now time.Time, elapsed time.Duration) ConversionResponse {
	return ConversionResponse{
		LadderData: LadderData{
			Rungs:    []Rung{},
			Metadata: Metadata{PLCType: plcType, GeneratedAt: now},
		},
		DeviceMap:      DeviceMap(nil),
		Errors:         []string{err.Error()},
		Warnings:       []string{},
		ProcessingTime: elapsed.Seconds(),
	}
}

// DeviceMap renders a device map keyed by class key ("inputs", "outputs",
// ...) and then by address. Every class key is present.
func DeviceMap(m device.Map) map[string]map[string]string {
	out := make(map[string]map[string]string, len(device.Classes))
	for _, c := range device.Classes {
		out[c.Key()] = m.Addresses(c)
	}
	return out
}

func fromRung(r ladder.Rung) Rung {
	out := Rung{Number: r.Number, Line: r.Line, Elements: make([]Element, 0, len(r.Elements))}
	for _, e := range r.Elements {
		el := Element{
			Type:        string(e.Kind),
			Address:     e.Address.String(),
			Variable:    e.SourceVariable,
			Description: e.Description,
			X:           e.Position.X,
			Y:           e.Position.Y,
			Column:      e.Position.Column,
			Row:         e.Position.Row,
		}
		if e.Kind == ladder.Contact {
			open := e.NormallyOpen
			el.IsNormallyOpen = &open
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}

// Convert runs one translation for req and always returns a response. A
// translation that cannot run (invalid input) yields a failed response with
// the reason in Errors.
func Convert(ctx context.Context, req ConversionRequest, base translator.Options) ConversionResponse {
	start := time.Now()
	opts := req.TranslatorOptions(base)
	logger := ctxlog.FromContext(ctx)

	res, err := translator.Translate(ctx, req.SourceCode, opts)
	if err != nil {
		logger.Warn("Translation could not run.", "error", err)
		family := opts.TargetFamily
		if family == "" {
			family = translator.DefaultFamily
		}
		return Failure(family, fmt.Errorf("translation failed: %w", err), time.Now(), time.Since(start))
	}
	return FromResult(res, time.Since(start))
}

// Socket.io event names. A client emits EventTranslate with a
// ConversionRequest and receives EventTranslation with the ConversionResponse,
// or EventError with an ErrorResponse when the payload cannot be read.
const (
	EventTranslate   = "translate"
	EventTranslation = "translation"
	EventError       = "translation_error"
)

// ErrBadUpload marks an uploaded file that cannot be used as source text.
var ErrBadUpload = errors.New("error processing file")
