//go:build rp2040

// pico-arm is the board firmware: servo engine on the PWM slices, embedded
// config, heartbeat and a console on UART0.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"armservo-go/bus"
	"armservo-go/services/config"
	"armservo-go/services/console"
	"armservo-go/services/heartbeat"
	"armservo-go/services/servo"
	"armservo-go/services/servo/platform"
)

const consoleBaud = 115200

// uartStream adapts uartx to the io.Reader/io.Writer pair the console wants.
type uartStream struct{ u *uartx.UART }

func (s *uartStream) Read(p []byte) (int, error) {
	return s.u.RecvSomeContext(context.Background(), p)
}
func (s *uartStream) Write(p []byte) (int, error) { return s.u.Write(p) }

func main() {
	// let USB settle before the first prints
	time.Sleep(2 * time.Second)
	println("[main] pico-arm booting")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico-arm")

	b := bus.NewBus(4)
	servoConn := b.NewConnection("servo")
	cfgConn := b.NewConnection("config")
	consoleConn := b.NewConnection("console")
	hbConn := b.NewConnection("heartbeat")

	go servo.Run(ctx, servoConn, platform.DefaultPWMFactory())

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, hbConn)

	// retained config reaches the servo service even though it starts later
	config.NewConfigService().Start(ctx, cfgConn)

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	s := &uartStream{u: u}
	console.New(consoleConn).Run(ctx, s, s)
}
