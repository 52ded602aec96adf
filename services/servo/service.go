// services/servo/service.go
package servo

import (
	"context"
	"encoding/json"

	"armservo-go/bus"
	"armservo-go/errcode"
	"armservo-go/types"
	"armservo-go/x/timex"
)

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

// Run wires the motion engine to the bus and blocks until ctx is cancelled.
// Channels are built from the retained config on "config/servo"; control
// messages arrive on "servo/control/<op>".
func Run(ctx context.Context, conn *bus.Connection, factory PWMFactory) {
	s := &service{
		conn:    conn,
		factory: factory,
		calib:   map[string]types.Calibration{},
	}
	s.loop(ctx)
}

type service struct {
	conn    *bus.Connection
	factory PWMFactory

	co    *Coordinator
	calib map[string]types.Calibration
}

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

// Blocking ops (wave, raise, ...) on a single target run on the loop
// goroutine, so the service processes one motion at a time. "both" targets
// fork and return immediately.
func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigServo())
	ctrlSub := s.conn.Subscribe(ctrlWildcard())
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return

		case msg := <-cfgSub.Channel():
			var cfg types.ServoConfig
			if err := decodeJSON(msg.Payload, &cfg); err != nil {
				println("[servo] config decode failed:", err.Error())
				s.publishState("error", "config_decode_failed")
				continue
			}
			s.applyConfig(cfg)
			s.publishState("ready", "configured")

		case msg := <-ctrlSub.Channel():
			// servo/control/<op>
			if msg.Topic.Len() < 3 {
				continue
			}
			op, _ := msg.Topic.At(2).(string)
			s.handleControl(msg, op)
		}
	}
}

func (s *service) applyConfig(cfg types.ServoConfig) {
	if s.co != nil {
		for _, c := range s.co.Channels() {
			c.Close()
		}
	}
	var left, right *Channel
	for _, cc := range cfg.Channels {
		ch := NewChannel(cc.Name, cc.Pin, s.factory, cc.Range, cc.Reverse)
		if err := ch.Configure(); err != nil {
			println("[servo] channel", cc.Name, "unavailable:", err.Error())
		}
		switch cc.Name {
		case TargetLeft:
			left = ch
		case TargetRight:
			right = ch
		default:
			println("[servo] ignoring channel with unknown name:", cc.Name)
			ch.Close()
			continue
		}
		s.publishChannelState(ch)
	}
	s.co = NewCoordinator(left, right)
	s.calib = cfg.Calibration
	if s.calib == nil {
		s.calib = map[string]types.Calibration{}
	}
}

func (s *service) handleControl(msg *bus.Message, op string) {
	if s.co == nil {
		s.replyErr(msg, errcode.NotInitialized)
		return
	}
	var req types.MotionRequest
	if err := decodeJSON(msg.Payload, &req); err != nil {
		s.replyErr(msg, errcode.InvalidPayload)
		return
	}

	switch op {
	case OpQuery:
		s.replyQuery(msg)
		return
	case "raise_degrees":
		s.handleDegrees(msg, req)
		return
	}

	tgt, ok := NormalizeTarget(req.Target)
	if !ok {
		s.replyErr(msg, errcode.InvalidTarget)
		return
	}
	p := Params{Speed: req.Speed, DurationMs: req.DurationMs, Count: req.Count, PulseUs: req.PulseUs, Action: req.Action}
	if !validParams(op, p) {
		s.replyErr(msg, paramsCode(op, p))
		return
	}
	if !s.co.Dispatch(tgt, op, p) {
		s.replyErr(msg, errcode.Error)
		return
	}
	s.replyOK(msg)
	s.publishStates()
}

// handleDegrees resolves a degree command through the target's calibration
// profile and runs it as a raise.
func (s *service) handleDegrees(msg *bus.Message, req types.MotionRequest) {
	tgt, ok := NormalizeTarget(req.Target)
	if !ok {
		s.replyErr(msg, errcode.InvalidTarget)
		return
	}
	cal, ok := s.calibrationFor(tgt)
	if !ok {
		s.replyErr(msg, errcode.InvalidParams)
		return
	}
	launched := HandleDegree(tgt, req.Degrees, cal, func(target string, speed, durationMs int) bool {
		return s.co.Dispatch(target, OpRaise, Params{Speed: speed, DurationMs: durationMs})
	})
	if !launched {
		s.replyErr(msg, errcode.InvalidDuration)
		return
	}
	s.replyOK(msg)
	s.publishStates()
}

// calibrationFor prefers a per-target profile over the "default" one.
func (s *service) calibrationFor(target string) (types.Calibration, bool) {
	if cal, ok := s.calib[target]; ok {
		return cal, true
	}
	cal, ok := s.calib["default"]
	return cal, ok
}

func (s *service) replyQuery(msg *bus.Message) {
	rep := types.QueryReply{OK: true}
	for _, c := range s.co.Channels() {
		rep.Channels = append(rep.Channels, channelState(c))
	}
	s.conn.Reply(msg, rep, false)
}

// paramsCode picks the most specific code for a rejected request.
func paramsCode(op string, p Params) errcode.Code {
	switch op {
	case OpRaise, OpSalute, OpTestDirection, OpWave, OpBackAndForth, OpMirror, OpAlternate:
		if p.DurationMs <= 0 {
			return errcode.InvalidDuration
		}
		return errcode.InvalidParams
	case OpCalibratePulse:
		return errcode.PulseOutOfRange
	default:
		return errcode.InvalidParams
	}
}

// -----------------------------------------------------------------------------
// State publishing + replies
// -----------------------------------------------------------------------------

func channelState(c *Channel) types.ChannelState {
	return types.ChannelState{
		Name:        c.Name(),
		Pin:         c.Pin(),
		Speed:       c.CurrentSpeed(),
		Initialized: c.Initialized(),
		TS:          timex.NowMs(),
	}
}

func (s *service) publishStates() {
	for _, c := range s.co.Channels() {
		s.publishChannelState(c)
	}
}

func (s *service) publishChannelState(c *Channel) {
	s.conn.Publish(s.conn.NewMessage(topicChannelState(c.Name()), channelState(c), true))
}

func (s *service) publishState(level, status string) {
	st := types.ServiceState{Level: level, Status: status, TS: timex.NowMs()}
	s.conn.Publish(s.conn.NewMessage(topicState(), st, true))
}

func (s *service) replyOK(msg *bus.Message) {
	s.conn.Reply(msg, types.OKReply{OK: true}, false)
}

func (s *service) replyErr(msg *bus.Message, code errcode.Code) {
	s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
}

func (s *service) shutdown() {
	if s.co != nil {
		for _, c := range s.co.Channels() {
			c.Close()
		}
	}
	s.publishState("stopped", "context_cancelled")
}

// -----------------------------------------------------------------------------
// Payload decoding
// -----------------------------------------------------------------------------

func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		// Accept maps, structs, numbers by marshaling then decoding to T.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
