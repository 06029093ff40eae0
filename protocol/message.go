package protocol

import (
	"errors"
	"fmt"
)

// CommandID identifies a panel command
type CommandID uint32

// Panel commands
const (
	// CmdSetLights host -> panel: vector=%c, the complete output vector
	CmdSetLights CommandID = 1
	// CmdQuerySensors host -> panel: no arguments
	CmdQuerySensors CommandID = 2
	// CmdSensors panel -> host: vector=%c, the sampled input vector
	CmdSensors CommandID = 3
	// CmdIdentify host -> panel: no arguments
	CmdIdentify CommandID = 4
	// CmdIdentifyResponse panel -> host: version=%u
	CmdIdentifyResponse CommandID = 5
)

var ErrUnknownCommand = errors.New("unknown command")

var commandArgs = map[CommandID]int{
	CmdSetLights:        1,
	CmdQuerySensors:     0,
	CmdSensors:          1,
	CmdIdentify:         0,
	CmdIdentifyResponse: 1,
}

var commandNames = map[CommandID]string{
	CmdSetLights:        "set_lights",
	CmdQuerySensors:     "query_sensors",
	CmdSensors:          "sensors",
	CmdIdentify:         "identify",
	CmdIdentifyResponse: "identify_response",
}

func (id CommandID) String() string {
	if name, ok := commandNames[id]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uint32(id))
}

// Command is one decoded command with its arguments
type Command struct {
	ID   CommandID
	Args []uint32
}

// Arg returns argument i, or 0 if absent
func (c Command) Arg(i int) uint32 {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return 0
}

// AppendCommand appends the encoding of cmd to a payload
func AppendCommand(dst []byte, cmd Command) ([]byte, error) {
	n, ok := commandArgs[cmd.ID]
	if !ok {
		return dst, fmt.Errorf("%w: %d", ErrUnknownCommand, uint32(cmd.ID))
	}
	if len(cmd.Args) != n {
		return dst, fmt.Errorf("%s takes %d arguments, got %d", cmd.ID, n, len(cmd.Args))
	}
	dst = AppendVLQUint(dst, uint32(cmd.ID))
	for _, a := range cmd.Args {
		dst = AppendVLQUint(dst, a)
	}
	return dst, nil
}

// DecodeCommands splits a frame payload into commands
func DecodeCommands(payload []byte) ([]Command, error) {
	var cmds []Command
	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			return cmds, fmt.Errorf("command id: %w", err)
		}
		n, ok := commandArgs[CommandID(id)]
		if !ok {
			return cmds, fmt.Errorf("%w: %d", ErrUnknownCommand, id)
		}
		cmd := Command{ID: CommandID(id), Args: make([]uint32, n)}
		for i := range cmd.Args {
			if cmd.Args[i], err = DecodeVLQUint(&payload); err != nil {
				return cmds, fmt.Errorf("%s argument %d: %w", cmd.ID, i, err)
			}
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// EncodeCommands builds one frame carrying cmds
func EncodeCommands(dst []byte, seq uint8, cmds ...Command) ([]byte, error) {
	var payload []byte
	for _, cmd := range cmds {
		var err error
		if payload, err = AppendCommand(payload, cmd); err != nil {
			return dst, err
		}
	}
	return EncodeFrame(dst, seq, payload)
}
