// armcli bridges the local terminal to the console of a flashed board over a
// serial port. Lines typed here run on the board; its replies print back.
package main

import (
	"flag"
	"io"
	"os"

	"go.bug.st/serial"
)

func main() {
	portName := flag.String("port", "/dev/ttyACM0", "serial port of the board")
	baud := flag.Int("baud", 115200, "baud rate")
	flag.Parse()

	mode := &serial.Mode{BaudRate: *baud}
	port, err := serial.Open(*portName, mode)
	if err != nil {
		println("[armcli] open", *portName, "failed:", err.Error())
		os.Exit(1)
	}
	defer port.Close()

	println("[armcli] connected to", *portName)

	go func() {
		if _, err := io.Copy(port, os.Stdin); err != nil {
			println("[armcli] stdin closed:", err.Error())
		}
		port.Close()
	}()

	if _, err := io.Copy(os.Stdout, port); err != nil {
		println("[armcli] port closed:", err.Error())
	}
}
