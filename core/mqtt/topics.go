package mqtt

import "strings"

// Topics derives the solver topics from a prefix.
type Topics struct {
	Prefix string
}

// Requests is the topic instances are submitted on.
func (t Topics) Requests() string { return t.prefix() + "/requests" }

// Result is the topic the report for requestID is published on.
func (t Topics) Result(requestID string) string { return t.prefix() + "/results/" + requestID }

// Results matches every result topic.
func (t Topics) Results() string { return t.prefix() + "/results/+" }

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return "invsched"
	}
	return p
}

// Match reports whether topic matches the MQTT filter, honouring the "+"
// and "#" wildcards.
func Match(filter, topic string) bool {
	fs := strings.Split(filter, "/")
	ts := strings.Split(topic, "/")
	for i, f := range fs {
		if f == "#" {
			return true
		}
		if i >= len(ts) {
			return false
		}
		if f != "+" && f != ts[i] {
			return false
		}
	}
	return len(fs) == len(ts)
}
