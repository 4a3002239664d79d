// Package heartbeat periodically reports the health of a link and its
// bridge.
package heartbeat

import (
	"context"
	"time"

	"x52link/types"
)

// Logger receives one Info record per beat.
type Logger interface {
	Info(msg string, args ...any)
}

type Service struct {
	Link   interface{ Status() types.LinkStatus }
	Bridge interface{ State() types.State } // optional
	Log    Logger

	interval chan time.Duration
}

func New(link interface{ Status() types.LinkStatus }, log Logger) *Service {
	return &Service{Link: link, Log: log, interval: make(chan time.Duration, 1)}
}

// SetInterval changes the beat period of a running service.
func (s *Service) SetInterval(d time.Duration) {
	select {
	case s.interval <- d:
	default:
	}
}

// Beat logs the current status once.
func (s *Service) Beat() {
	st := s.Link.Status()
	args := []any{
		"variant", string(st.Variant),
		"role", string(st.Role),
		"link", string(st.Link),
		"frames", st.Frames,
		"rate", st.UpdatesPerSec,
	}
	for code, n := range st.Failures {
		args = append(args, code, n)
	}
	if st.LastError != "" {
		args = append(args, "last_error", st.LastError)
	}
	if s.Bridge != nil {
		b := s.Bridge.State()
		args = append(args, "bridge", b.Level, "bridge_status", b.Status)
	}
	s.Log.Info("heartbeat", args...)
}

func (s *Service) serviceLoop(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and interval changes
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("heartbeat service stopping")
			return
		case <-tick.C:
			s.Beat()
		case d := <-s.interval:
			if d > 0 {
				tick.Reset(d)
				s.Log.Info("heartbeat interval set", "ms", d.Milliseconds())
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Second
	}
	go s.serviceLoop(ctx, every)
}
