// internal/agent/conversation.go
package agent

import "github.com/kvirtue/gemini-computer-use/api/schemas"

// Conversation is the model's working memory for one run: an append-only
// ordered log of turns. The first turn is always the seed; after that, model
// turns and observation turns strictly alternate. It is owned by a single
// controller and never shared across runs.
type Conversation struct {
	turns []schemas.Turn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Seed records the opening turn: instruction plus starting screenshot.
func (c *Conversation) Seed(instruction string, screenshot []byte) {
	c.turns = append(c.turns, &schemas.SeedTurn{
		Instruction: instruction,
		Screenshot:  screenshot,
	})
}

// AppendModel records what the model said.
func (c *Conversation) AppendModel(turn *schemas.ModelTurn) {
	c.turns = append(c.turns, turn)
}

// AppendObservations records the outcome of one model turn's actions, in
// execution order.
func (c *Conversation) AppendObservations(records []schemas.ObservationRecord) {
	c.turns = append(c.turns, &schemas.ObservationTurn{Records: records})
}

// Turns returns the ordered log. Callers must not mutate it.
func (c *Conversation) Turns() []schemas.Turn {
	return c.turns
}

// Len reports the number of turns recorded so far.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// PruneScreenshots drops screenshot payloads from all but the most recent
// keep screenshot-bearing turns, bounding the request size replayed to the
// model. URLs, notes, and action names are always retained.
func (c *Conversation) PruneScreenshots(keep int) {
	if keep <= 0 {
		return
	}

	remaining := keep
	for i := len(c.turns) - 1; i >= 0; i-- {
		switch t := c.turns[i].(type) {
		case *schemas.ObservationTurn:
			hasShot := false
			for j := range t.Records {
				if len(t.Records[j].Observation.Screenshot) > 0 {
					hasShot = true
					if remaining <= 0 {
						t.Records[j].Observation.Screenshot = nil
					}
				}
			}
			if hasShot && remaining > 0 {
				remaining--
			}
		case *schemas.SeedTurn:
			if len(t.Screenshot) > 0 {
				if remaining <= 0 {
					t.Screenshot = nil
				} else {
					remaining--
				}
			}
		}
	}
}
