// internal/llmclient/contents.go
package llmclient

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
)

const screenshotMIMEType = "image/png"

// buildContents reconstructs the provider-native conversation from the
// ordered turn log. Model turns replay the exact content the provider
// returned so the follow-up request is byte-faithful.
func buildContents(history []schemas.Turn) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))

	for i, turn := range history {
		switch t := turn.(type) {
		case *schemas.SeedTurn:
			parts := []*genai.Part{genai.NewPartFromText(t.Instruction)}
			if len(t.Screenshot) > 0 {
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{
						MIMEType: screenshotMIMEType,
						Data:     t.Screenshot,
					},
				})
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		case *schemas.ModelTurn:
			raw, ok := t.Raw.(*genai.Content)
			if !ok || raw == nil {
				return nil, fmt.Errorf("model turn %d carries no provider content", i)
			}
			contents = append(contents, raw)

		case *schemas.ObservationTurn:
			parts := make([]*genai.Part, 0, len(t.Records))
			for _, rec := range t.Records {
				parts = append(parts, observationPart(rec))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		default:
			return nil, fmt.Errorf("unknown turn type at index %d", i)
		}
	}

	return contents, nil
}

// observationPart renders one executed action's outcome as a function
// response. Screenshots dropped by conversation pruning simply omit the
// inline image part.
func observationPart(rec schemas.ObservationRecord) *genai.Part {
	response := map[string]any{
		"url": rec.Observation.URL,
	}
	if rec.Observation.Note != "" {
		response["error"] = rec.Observation.Note
	}
	if rec.Observation.SafetyAcknowledged {
		response["safety_acknowledgement"] = "true"
	}

	fr := &genai.FunctionResponse{
		Name:     rec.Action,
		Response: response,
	}
	if len(rec.Observation.Screenshot) > 0 {
		fr.Parts = []*genai.FunctionResponsePart{{
			InlineData: &genai.FunctionResponseBlob{
				MIMEType: screenshotMIMEType,
				Data:     rec.Observation.Screenshot,
			},
		}}
	}

	return &genai.Part{FunctionResponse: fr}
}
