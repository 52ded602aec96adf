// services/console/console.go
package console

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"time"

	"armservo-go/bus"
	"armservo-go/services/servo"
	"armservo-go/types"
	"armservo-go/x/strx"

	"github.com/google/shlex"
)

// Line console over any byte stream (stdin on the host, UART on device).
// Each line is a command: "<op> [target] [key=value]...". The command is
// published on servo/control/<op> and the reply printed when it arrives.

const replyTimeout = 30 * time.Second // blocking gestures can take a while

type Service struct {
	conn *bus.Connection
}

func New(conn *bus.Connection) *Service { return &Service{conn: conn} }

// Run reads lines until ctx is cancelled or the stream ends.
func (s *Service) Run(ctx context.Context, r io.Reader, w io.Writer) {
	repSub := s.conn.Subscribe(bus.T("console", "reply"))
	defer s.conn.Unsubscribe(repSub)

	lines := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	writeLine(w, "servo console ready, try: help")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			s.handleLine(ctx, line, w, repSub)
		}
	}
}

func (s *Service) handleLine(ctx context.Context, line string, w io.Writer, repSub *bus.Subscription) {
	tokens, err := shlex.Split(line)
	if err != nil {
		writeLine(w, "parse error: "+err.Error())
		return
	}
	if len(tokens) == 0 {
		return
	}
	op := tokens[0]
	if op == "help" {
		printHelp(w)
		return
	}

	req, wireOp, ok := buildRequest(op, tokens[1:])
	if !ok {
		writeLine(w, "unknown command: "+op+" (try: help)")
		return
	}

	s.conn.Publish(s.conn.NewRequest(bus.T("servo", "control", wireOp), req, bus.T("console", "reply")))

	select {
	case <-ctx.Done():
	case msg := <-repSub.Channel():
		printReply(w, msg.Payload)
	case <-time.After(replyTimeout):
		writeLine(w, "timeout waiting for reply")
	}
}

// buildRequest folds the positional target and key=value pairs onto a
// MotionRequest, with the per-op console defaults filled in first.
func buildRequest(op string, args []string) (types.MotionRequest, string, bool) {
	req, wireOp, ok := defaultsFor(op)
	if !ok {
		return req, "", false
	}
	for _, a := range args {
		if k, v, isKV := splitKV(a); isKV {
			if k == "action" {
				req.Action = v
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				continue
			}
			switch k {
			case "speed":
				req.Speed = n
			case "duration", "duration_ms":
				req.DurationMs = n
			case "count":
				req.Count = n
			case "degrees":
				req.Degrees = n
			case "pulse", "pulse_us":
				req.PulseUs = n
			}
			continue
		}
		// bare token is the target
		req.Target = a
	}
	req.Target = strx.Coalesce(req.Target, servo.TargetBoth)
	return req, wireOp, true
}

// defaultsFor returns the wire op and the console defaults for a command.
// The target stays empty here; buildRequest fills it from the positional
// argument or falls back to "both".
func defaultsFor(op string) (types.MotionRequest, string, bool) {
	var req types.MotionRequest
	switch op {
	case "set":
		return req, servo.OpSet, true
	case "stop":
		req.Speed = 0
		return req, servo.OpSet, true
	case "quick", "quick_set":
		req.DurationMs = 100
		return req, servo.OpQuickSet, true
	case "wave":
		req.Speed, req.DurationMs, req.Count = 80, 400, 3
		return req, servo.OpWave, true
	case "raise":
		req.Speed, req.DurationMs = 80, 600
		return req, servo.OpRaise, true
	case "salute":
		req.Speed, req.DurationMs = 80, 500
		return req, servo.OpSalute, true
	case "baf", "back_and_forth":
		req.Speed, req.DurationMs, req.Count = 80, 300, 2
		return req, servo.OpBackAndForth, true
	case "testdir", "test_direction":
		req.Speed, req.DurationMs = 50, 500
		return req, servo.OpTestDirection, true
	case "pulse", "calibrate_pulse":
		req.PulseUs = 1500
		return req, servo.OpCalibratePulse, true
	case "mirror":
		req.Speed, req.DurationMs, req.Count = 80, 300, 3
		return req, servo.OpMirror, true
	case "combo":
		req.Speed, req.DurationMs = 80, 500
		return req, servo.OpCombo, true
	case "alternate":
		req.Speed, req.DurationMs, req.Count = 80, 600, 2
		return req, servo.OpAlternate, true
	case "degrees", "raise_degrees":
		return req, "raise_degrees", true
	case "query":
		return req, servo.OpQuery, true
	default:
		return req, "", false
	}
}

func splitKV(s string) (key, val string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func printReply(w io.Writer, payload any) {
	switch rep := payload.(type) {
	case types.OKReply:
		writeLine(w, "ok")
	case types.ErrorReply:
		writeLine(w, "error: "+rep.Error)
	case types.QueryReply:
		for _, ch := range rep.Channels {
			writeLine(w, ch.Name+" pin="+strconv.Itoa(ch.Pin)+
				" speed="+strconv.Itoa(ch.Speed)+
				" initialized="+strconv.FormatBool(ch.Initialized))
		}
	default:
		writeLine(w, "reply received")
	}
}

func printHelp(w io.Writer) {
	writeLine(w, "commands (target is left, right or both; defaults shown):")
	writeLine(w, "  set [target] speed=N          command a speed, -100..100")
	writeLine(w, "  stop [target]                 stop")
	writeLine(w, "  quick [target] speed=N        kick with auto-stop")
	writeLine(w, "  wave [target] speed=80 duration=400 count=3")
	writeLine(w, "  raise [target] speed=80 duration=600")
	writeLine(w, "  salute [target] speed=80 duration=500")
	writeLine(w, "  baf [target] speed=80 duration=300 count=2")
	writeLine(w, "  testdir [target] speed=50 duration=500")
	writeLine(w, "  pulse [target] pulse=1500     raw pulse width, 1000..2000")
	writeLine(w, "  degrees [target] degrees=N    calibrated raise")
	writeLine(w, "  combo action=raise_wave speed=80 duration=500")
	writeLine(w, "  mirror / alternate / query")
}

func writeLine(w io.Writer, s string) {
	_, _ = io.WriteString(w, s+"\r\n")
}
