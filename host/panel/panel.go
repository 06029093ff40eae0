// Package panel talks to a remote lamp/sensor panel over the framed serial
// link. A Panel is both the InputReader and the OutputWriter of a
// controller running on the host.
package panel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"trafficlight/core"
	"trafficlight/host/serial"
	"trafficlight/protocol"
)

// ErrNoResponse is returned when the panel does not answer a query
var ErrNoResponse = errors.New("panel did not respond")

// DefaultIdleReads is how many empty reads (read timeouts) a query waits
const DefaultIdleReads = 5

// Panel is the host side of the link
type Panel struct {
	mu sync.Mutex

	rw     io.ReadWriter
	dec    *protocol.FrameDecoder
	seq    uint8
	logger *slog.Logger

	idleReads int
	rbuf      [protocol.FrameMax]byte
}

// Option configures a Panel
type Option func(*Panel)

// WithLogger sets the logger for link diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) {
		p.logger = l
	}
}

// WithIdleReads sets how many empty reads a query tolerates
func WithIdleReads(n int) Option {
	return func(p *Panel) {
		p.idleReads = n
	}
}

// New creates a panel over rw
func New(rw io.ReadWriter, opts ...Option) *Panel {
	p := &Panel{
		rw:        rw,
		dec:       protocol.NewFrameDecoder(),
		seq:       protocol.SeqDest,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		idleReads: DefaultIdleReads,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open opens the serial port and returns a panel on it
func Open(cfg *serial.Config, opts ...Option) (*Panel, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush %s: %w", cfg.Device, err)
	}
	return New(port, opts...), nil
}

// Close closes the underlying port if it can be closed
func (p *Panel) Close() error {
	if c, ok := p.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteOutputs sends the complete output vector in one command
func (p *Panel) WriteOutputs(v core.OutputVector) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.send(protocol.Command{ID: protocol.CmdSetLights, Args: []uint32{uint32(v)}})
	return err
}

// ReadInputs queries the panel and waits for its sensor report
func (p *Panel) ReadInputs() (core.InputVector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, err := p.send(protocol.Command{ID: protocol.CmdQuerySensors, Args: []uint32{}})
	if err != nil {
		return 0, err
	}
	resp, err := p.await(protocol.CmdSensors, seq)
	if err != nil {
		return 0, err
	}
	return core.InputVector(resp.Arg(0)) & core.InputMask, nil
}

// Identify asks the panel for its link version
func (p *Panel) Identify() (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, err := p.send(protocol.Command{ID: protocol.CmdIdentify, Args: []uint32{}})
	if err != nil {
		return 0, err
	}
	resp, err := p.await(protocol.CmdIdentifyResponse, seq)
	if err != nil {
		return 0, err
	}
	return resp.Arg(0), nil
}

// send writes cmd in its own frame and returns the frame's sequence byte
func (p *Panel) send(cmd protocol.Command) (uint8, error) {
	seq := p.seq
	frame, err := protocol.EncodeCommands(nil, seq, cmd)
	if err != nil {
		return 0, err
	}
	p.seq = protocol.NextSeq(p.seq)
	if _, err := p.rw.Write(frame); err != nil {
		return 0, fmt.Errorf("send %s: %w", cmd.ID, err)
	}
	return seq, nil
}

// await reads until a command with the given id arrives in a frame carrying
// seq. Frames answering earlier queries are dropped.
func (p *Panel) await(id protocol.CommandID, seq uint8) (protocol.Command, error) {
	idle := 0
	for {
		for {
			f, ok, err := p.dec.Next()
			if err != nil {
				p.logger.Warn("discarded frame", "error", err)
				continue
			}
			if !ok {
				break
			}
			if f.Seq != seq {
				p.logger.Debug("stale reply", "seq", f.Seq, "want", seq)
				continue
			}
			cmds, err := protocol.DecodeCommands(f.Payload)
			if err != nil {
				p.logger.Warn("malformed payload", "error", err)
			}
			for _, cmd := range cmds {
				if cmd.ID == id {
					return cmd, nil
				}
				p.logger.Debug("ignored command", "command", cmd.ID.String(), "args", cmd.Args)
			}
		}

		n, err := p.rw.Read(p.rbuf[:])
		if n > 0 {
			idle = 0
			p.dec.Write(p.rbuf[:n])
			continue
		}
		switch {
		case err == nil || errors.Is(err, io.EOF):
			idle++
			if idle >= p.idleReads {
				return protocol.Command{}, fmt.Errorf("waiting for %s: %w", id, ErrNoResponse)
			}
		default:
			return protocol.Command{}, fmt.Errorf("waiting for %s: %w", id, err)
		}
	}
}
