//go:build rp2040 || rp2350

// Command pico-x52 is the firmware for one half of a bridged X52 link. The
// device name selects an embedded LinkConfig; override it at build time with
// -ldflags "-X main.device=pico-throttle".
package main

import (
	"context"
	"errors"
	"io"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"x52link/hal"
	"x52link/services/bridge"
	"x52link/services/config"
	"x52link/services/heartbeat"
	"x52link/services/link"
	"x52link/types"
	"x52link/x/logfmt"
	"x52link/x52"
)

var (
	device  = "pico-joystick"
	verbose = "" // any non-empty value enables debug records
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	log := &logfmt.Printer{Prefix: "[x52] ", Verbose: verbose != ""}
	log.Info("boot", "device", device)

	cfg, err := config.Load(device)
	if err != nil {
		halt(log, "config", err)
	}

	pins, err := x52.PinsByNumber(hal.DefaultPinFactory(), cfg.Pins.C01, cfg.Pins.C02, cfg.Pins.C03, cfg.Pins.C04)
	if err != nil {
		halt(log, "pins", err)
	}

	ctx := context.Background()
	bridge.UARTDial = dialUART

	var relay link.Relay = link.NewLocalRelay()
	var br *bridge.Service
	if cfg.Bridge != nil {
		br = bridge.New(cfg.Variant, log)
		br.Configure(*cfg.Bridge)
		go br.Run(ctx)
		relay = br
	}

	clk := hal.NewMCUClock()
	side, err := link.NewSide(cfg, pins, clk, relay, log)
	if err != nil {
		halt(log, "side", err)
	}
	runner := link.NewRunner(cfg, side, clk, log)
	runner.Idle = func(us uint32) {
		if us >= 1000 {
			time.Sleep(time.Duration(us) * time.Microsecond)
			return
		}
		clk.SleepMicros(us)
	}

	hb := heartbeat.New(runner, log)
	if br != nil {
		hb.Bridge = br
	}
	hb.Start(ctx, 5*time.Second)

	log.Info("link starting", "variant", string(cfg.Variant), "role", string(cfg.Role))
	if err := runner.Run(ctx); err != nil {
		halt(log, "link", err)
	}
}

// halt reports a fatal error forever so it is visible whenever a console
// attaches.
func halt(log *logfmt.Printer, stage string, err error) {
	for {
		log.Error("halted", "stage", stage, "err", err.Error())
		time.Sleep(5 * time.Second)
	}
}

// uartConn adapts a uartx port to the bridge's byte stream. Close only
// unblocks readers; the port itself stays configured for the next dial.
type uartConn struct {
	u      *uartx.UART
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *uartConn) Read(b []byte) (int, error) {
	n, err := c.u.RecvSomeContext(c.ctx, b)
	if err != nil && c.ctx.Err() != nil {
		return n, io.EOF
	}
	return n, err
}

func (c *uartConn) Write(b []byte) (int, error) {
	if c.ctx.Err() != nil {
		return 0, io.ErrClosedPipe
	}
	return c.u.Write(b)
}

func (c *uartConn) Close() error { c.cancel(); return nil }

func dialUART(ctx context.Context, u types.UARTConfig) (io.ReadWriteCloser, error) {
	var hw *uartx.UART
	switch {
	case u.TxPin == 0 && u.RxPin == 1, u.TxPin == 12 && u.RxPin == 13, u.TxPin == 16 && u.RxPin == 17:
		hw = uartx.UART0
	case u.TxPin == 4 && u.RxPin == 5, u.TxPin == 8 && u.RxPin == 9:
		hw = uartx.UART1
	default:
		return nil, errors.New("no uart on these pins")
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: uint32(u.Baud),
		TX:       machine.Pin(u.TxPin),
		RX:       machine.Pin(u.RxPin),
	}); err != nil {
		return nil, err
	}
	cctx, cancel := context.WithCancel(context.Background())
	return &uartConn{u: hw, ctx: cctx, cancel: cancel}, nil
}
