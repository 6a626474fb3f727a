/*
 * sngisdn - Main process.
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

// Reference daemon: attaches one span over an in-memory D-channel port and
// runs its engine until interrupted. Configuration parsing belongs to an
// external consumer; this binary uses a fixed T1/NI-2 SpanConfig so the
// engine can be exercised standalone.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcornwell/sngisdn/internal/channelslot"
	"github.com/rcornwell/sngisdn/internal/dchanport"
	"github.com/rcornwell/sngisdn/internal/enginectx"
	"github.com/rcornwell/sngisdn/internal/engineconfig"
	"github.com/rcornwell/sngisdn/internal/logging"
	"github.com/rcornwell/sngisdn/internal/sigtypes"
	"github.com/rcornwell/sngisdn/internal/spandata"
	"github.com/rcornwell/sngisdn/internal/spanengine"
	"github.com/rcornwell/sngisdn/internal/stackadapter"
)

func main() {
	var logFile io.Writer
	if name := os.Getenv("SNGISDN_LOG"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to open log file: ", err)
			os.Exit(1)
		}
		logFile = f
		defer f.Close()
	}

	handler := logging.NewHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}, os.Getenv("SNGISDN_DEBUG") != "")
	slog.SetDefault(slog.New(handler))
	log := logging.New(handler)

	cfg := engineconfig.SpanConfig{
		SwitchType: sigtypes.VariantNI2,
		Signalling: sigtypes.RoleCPE,
		SpanID:     1,
		PhysSpan:   1,
		ChanCount:  24,
		DChanIndex: 23,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Span configuration rejected: ", err)
		os.Exit(1)
	}

	ctx := enginectx.New(log)
	defer ctx.Shutdown()

	port := dchanport.NewMemPort()
	span := spandata.New(cfg, port)
	adapter := stackadapter.New(span, log)

	engine := spanengine.New(span, ctx, adapter, func(sp *spandata.SpanData, slot *channelslot.Slot, sig sigtypes.AppSignal, incomplete bool, cause string) {
		attrs := []any{"span", sp.SpanID, "signal", sig.String()}
		if slot != nil {
			attrs = append(attrs, "chan", slot.ChanIndex)
		}
		if incomplete {
			attrs = append(attrs, "incomplete", true)
		}
		if cause != "" {
			attrs = append(attrs, "cause", cause)
		}
		slog.Info("application signal", attrs...)
	})
	engine.Start()
	slog.Info("span attached", "span", cfg.SpanID, "channels", cfg.ChanCount, "switchtype", cfg.SwitchType.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	engine.Stop()
}
