package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/agent"
)

func observationWithShot(action string) []schemas.ObservationRecord {
	return []schemas.ObservationRecord{{
		Action: action,
		Observation: schemas.ActionObservation{
			URL:        "https://example.com",
			Screenshot: []byte("png"),
		},
	}}
}

func TestConversationTurnOrder(t *testing.T) {
	c := agent.NewConversation()
	c.Seed("do the thing", []byte("seed"))
	c.AppendModel(&schemas.ModelTurn{Actions: []schemas.ProposedAction{{Name: "click_at"}}})
	c.AppendObservations(observationWithShot("click_at"))

	turns := c.Turns()
	require.Len(t, turns, 3)
	assert.IsType(t, &schemas.SeedTurn{}, turns[0])
	assert.IsType(t, &schemas.ModelTurn{}, turns[1])
	assert.IsType(t, &schemas.ObservationTurn{}, turns[2])
}

func TestPruneScreenshotsKeepsMostRecent(t *testing.T) {
	c := agent.NewConversation()
	c.Seed("task", []byte("seed"))
	for i := 0; i < 4; i++ {
		c.AppendModel(&schemas.ModelTurn{Actions: []schemas.ProposedAction{{Name: "click_at"}}})
		c.AppendObservations(observationWithShot("click_at"))
	}

	c.PruneScreenshots(3)

	turns := c.Turns()
	seed := turns[0].(*schemas.SeedTurn)
	assert.Empty(t, seed.Screenshot, "oldest screenshot should be pruned first")

	var withShot int
	for _, turn := range turns[1:] {
		obs, ok := turn.(*schemas.ObservationTurn)
		if !ok {
			continue
		}
		for _, rec := range obs.Records {
			assert.Equal(t, "click_at", rec.Action, "action names survive pruning")
			assert.NotEmpty(t, rec.Observation.URL, "URLs survive pruning")
			if len(rec.Observation.Screenshot) > 0 {
				withShot++
			}
		}
	}
	assert.Equal(t, 3, withShot)

	// The first observation turn lost its screenshot too.
	first := turns[2].(*schemas.ObservationTurn)
	assert.Empty(t, first.Records[0].Observation.Screenshot)
}

func TestPruneScreenshotsZeroKeepIsNoop(t *testing.T) {
	c := agent.NewConversation()
	c.Seed("task", []byte("seed"))

	c.PruneScreenshots(0)

	seed := c.Turns()[0].(*schemas.SeedTurn)
	assert.NotEmpty(t, seed.Screenshot)
}
