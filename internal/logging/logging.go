/*
 * sngisdn - Structured logging facade over slog.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package logging provides the process logging stack: a routing
// slog.Handler that fans each record out to an optional log file and to
// stderr (stderr only above Debug unless the debug gate is open), with
// the encoding itself left to slog's text handlers, and a
// github.com/joeycumines/logiface + logiface-slog façade layered on top
// for the hot call-control path, where fields like
// span/chan/local_inst/peer_inst are logged on every transition without
// the allocation cost of slog's variadic Attr API.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Handler routes records to up to two sinks: a log file (when one is
// configured) and stderr. Debug records reach stderr only when the debug
// gate is open; everything else always echoes there. The gate is fixed
// at construction; spans build one handler at startup and never mutate
// it after.
type Handler struct {
	file   slog.Handler // nil when no log file is configured
	stderr slog.Handler
	debug  bool
}

// NewHandler builds a Handler. file may be nil for stderr-only
// operation; debug opens the stderr gate for Debug-level records.
func NewHandler(file io.Writer, opts *slog.HandlerOptions, debug bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		stderr: slog.NewTextHandler(os.Stderr, opts),
		debug:  debug,
	}
	if file != nil {
		h.file = slog.NewTextHandler(file, opts)
	}
	return h
}

func (h *Handler) stderrWants(level slog.Level) bool {
	return h.debug || level > slog.LevelDebug
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.file != nil && h.file.Enabled(ctx, level) {
		return true
	}
	return h.stderrWants(level) && h.stderr.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.file != nil && h.file.Enabled(ctx, r.Level) {
		err = h.file.Handle(ctx, r)
	}
	if h.stderrWants(r.Level) && h.stderr.Enabled(ctx, r.Level) {
		if e := h.stderr.Handle(ctx, r); err == nil {
			err = e
		}
	}
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &Handler{stderr: h.stderr.WithAttrs(attrs), debug: h.debug}
	if h.file != nil {
		out.file = h.file.WithAttrs(attrs)
	}
	return out
}

func (h *Handler) WithGroup(name string) slog.Handler {
	out := &Handler{stderr: h.stderr.WithGroup(name), debug: h.debug}
	if h.file != nil {
		out.file = h.file.WithGroup(name)
	}
	return out
}

// Logger is the typed, structured logging façade used on the
// StateMachine/SpanEngine hot path: logiface.Logger built over the slog
// Handler above via logiface-slog, so span/chan/local_inst/peer_inst
// fields are typed calls (Int, Str, ...) rather than interface{}
// varargs.
type Logger = logiface.Logger[*islog.Event]

// New builds a Logger writing through handler.
func New(handler slog.Handler) *Logger {
	return logiface.New[*islog.Event](islog.NewLogger(handler))
}

// Discard returns a Logger that drops everything, for tests and for
// EngineContext.New(nil).
func Discard() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
