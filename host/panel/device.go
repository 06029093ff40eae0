package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"trafficlight/core"
	"trafficlight/protocol"
)

// Device is the panel end of the link: it applies set_lights to its lamps
// and answers query_sensors from its sensors. It runs on the panel
// hardware and stands in for it in simulations.
type Device struct {
	rw      io.ReadWriter
	sensors core.InputReader
	lamps   core.OutputWriter
	logger  *slog.Logger

	dec *protocol.FrameDecoder
}

// NewDevice creates a panel endpoint over rw
func NewDevice(rw io.ReadWriter, sensors core.InputReader, lamps core.OutputWriter, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Device{
		rw:      rw,
		sensors: sensors,
		lamps:   lamps,
		logger:  logger,
		dec:     protocol.NewFrameDecoder(),
	}
}

// Serve handles commands until the link closes or ctx is done. ctx is
// checked between reads.
func (d *Device) Serve(ctx context.Context) error {
	var buf [protocol.FrameMax]byte
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := d.rw.Read(buf[:])
		if n > 0 {
			d.dec.Write(buf[:n])
			if herr := d.drain(); herr != nil {
				return herr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("panel read: %w", err)
		}
	}
}

func (d *Device) drain() error {
	for {
		f, ok, err := d.dec.Next()
		if err != nil {
			d.logger.Warn("discarded frame", "error", err)
			continue
		}
		if !ok {
			return nil
		}
		cmds, err := protocol.DecodeCommands(f.Payload)
		if err != nil {
			d.logger.Warn("malformed payload", "error", err)
		}
		for _, cmd := range cmds {
			if err := d.handle(f.Seq, cmd); err != nil {
				return err
			}
		}
	}
}

// handle applies one command. Replies echo the request's sequence byte.
func (d *Device) handle(seq uint8, cmd protocol.Command) error {
	switch cmd.ID {
	case protocol.CmdSetLights:
		v := core.OutputVector(cmd.Arg(0))
		if _, err := core.Unpack(v); err != nil {
			d.logger.Warn("rejected light vector", "vector", fmt.Sprintf("%08b", uint8(v)), "error", err)
			return nil
		}
		if err := d.lamps.WriteOutputs(v); err != nil {
			return fmt.Errorf("lamps: %w", err)
		}
	case protocol.CmdQuerySensors:
		in, err := d.sensors.ReadInputs()
		if err != nil {
			return fmt.Errorf("sensors: %w", err)
		}
		return d.reply(seq, protocol.Command{ID: protocol.CmdSensors, Args: []uint32{uint32(in & core.InputMask)}})
	case protocol.CmdIdentify:
		return d.reply(seq, protocol.Command{ID: protocol.CmdIdentifyResponse, Args: []uint32{protocol.Version}})
	default:
		d.logger.Debug("ignored command", "command", cmd.ID.String())
	}
	return nil
}

func (d *Device) reply(seq uint8, cmd protocol.Command) error {
	frame, err := protocol.EncodeCommands(nil, seq, cmd)
	if err != nil {
		return err
	}
	if _, err := d.rw.Write(frame); err != nil {
		return fmt.Errorf("panel reply: %w", err)
	}
	return nil
}
