//go:build rp2040 || rp2350

package main

import (
	"machine"
)

// InitUSB configures machine.Serial, which is USB CDC on the RP2040
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// DebugPrintln writes one line to the USB console. Output is dropped when
// no host is listening.
func DebugPrintln(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}
