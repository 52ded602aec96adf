package servo

import "armservo-go/bus"

// Opaque-topic helpers

func topicConfigServo() bus.Topic { return bus.T("config", "servo") }
func topicState() bus.Topic       { return bus.T("servo", "state") }

// servo/channel/<name>/state (retained)
func topicChannelState(name string) bus.Topic { return bus.T("servo", "channel", name, "state") }

// servo/control/<op>
func ctrlWildcard() bus.Topic { return bus.T("servo", "control", "+") }
