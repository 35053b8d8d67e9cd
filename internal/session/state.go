package session

import "maps"

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one side of a completed escalation exchange.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Counters tracks escalation attempts for one session. LLM and Verify only
// grow until Reset. Tools counts successful tool invocations by name.
type Counters struct {
	LLM    int            `json:"llm"`
	Verify int            `json:"verify"`
	Tools  map[string]int `json:"tools,omitempty"`
}

// NextLLM records one escalation attempt and reports whether it is still
// within limit.
func (c *Counters) NextLLM(limit int) bool {
	c.LLM++
	return c.LLM <= limit
}

// NextVerify records one verification attempt and reports whether it is
// still within limit.
func (c *Counters) NextVerify(limit int) bool {
	c.Verify++
	return c.Verify <= limit
}

// UseTool records a completed tool call.
func (c *Counters) UseTool(name string) {
	if c.Tools == nil {
		c.Tools = make(map[string]int)
	}
	c.Tools[name]++
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	*c = Counters{}
}

// Clone returns a deep copy of c.
func (c Counters) Clone() Counters {
	c.Tools = maps.Clone(c.Tools)
	return c
}
