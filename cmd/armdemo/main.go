//go:build !rp2040 && !rp2350

// armdemo runs the whole stack on the host: fake PWM outputs, the servo
// service, a heartbeat and an interactive console on stdin. Motion commands
// behave exactly as on the board, minus the hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"gopkg.in/yaml.v3"

	"armservo-go/bus"
	"armservo-go/services/console"
	"armservo-go/services/heartbeat"
	"armservo-go/services/servo"
	"armservo-go/services/servo/platform"
	"armservo-go/types"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	servoConn := b.NewConnection("servo")
	mainConn := b.NewConnection("main")
	consoleConn := b.NewConnection("console")
	hbConn := b.NewConnection("heartbeat")

	go servo.Run(ctx, servoConn, platform.DefaultPWMFactory())

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, hbConn)

	if *cfgPath != "" {
		if err := publishYAMLConfig(mainConn, *cfgPath); err != nil {
			println("[main] config file:", err.Error())
			os.Exit(1)
		}
	} else {
		publishDefaultConfig(mainConn)
	}

	console.New(consoleConn).Run(ctx, os.Stdin, os.Stdout)
}

// publishYAMLConfig converts each top-level YAML section to JSON bytes and
// publishes it retained on config/<section>, same shape the embedded config
// service produces on device builds.
func publishYAMLConfig(conn *bus.Connection, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sections map[string]any
	if err := yaml.Unmarshal(raw, &sections); err != nil {
		return err
	}
	for k, v := range sections {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		conn.Publish(conn.NewMessage(bus.T("config", k), b, true))
	}
	return nil
}

func publishDefaultConfig(conn *bus.Connection) {
	cfg := types.ServoConfig{
		Channels: []types.ChannelConfig{
			{Name: "left", Pin: 16},
			{Name: "right", Pin: 17, Reverse: true},
		},
		Calibration: map[string]types.Calibration{
			"default": {Speed: 80, FullCircleTimeMs: 2000},
		},
	}
	conn.Publish(conn.NewMessage(bus.T("config", "servo"), cfg, true))
}
