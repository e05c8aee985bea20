package agents

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownAgent is returned when looking up an agent ID that is not in
// the catalogue.
var ErrUnknownAgent = errors.New("unknown agent")

// Agent is one marketplace entry: metadata plus a prompt template.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	prompt func(input string) string
}

// Response is a completed agent run: the raw completion plus the sectioned
// view the UI renders.
type Response struct {
	AgentID  string    `json:"agent_id"`
	Raw      string    `json:"raw"`
	Sections []Section `json:"sections"`
}

// Run builds the agent's prompt for the given input, calls the completion
// service and sections the result.
func (a Agent) Run(ctx context.Context, c Completer, input string) (Response, error) {
	out, err := c.Complete(ctx, a.prompt(input))
	if err != nil {
		return Response{}, errors.Wrapf(err, "agent %s", a.ID)
	}
	return Response{AgentID: a.ID, Raw: out, Sections: Sections(out)}, nil
}

var catalogue = []Agent{
	{
		ID:          "summarizer",
		Name:        "Summarizer",
		Description: "Condenses long text into a short summary with key points.",
		prompt: func(input string) string {
			return fmt.Sprintf("Summarize the following text. Start with a short summary, then list the key points as bullets.\n\n%s", input)
		},
	},
	{
		ID:          "code-fixer",
		Name:        "Code Fixer",
		Description: "Finds and explains bugs in a code snippet and proposes a fix.",
		prompt: func(input string) string {
			return fmt.Sprintf("Review the following code for bugs. Explain each problem, then show the corrected code.\n\n%s", input)
		},
	},
	{
		ID:          "brainstormer",
		Name:        "Brainstormer",
		Description: "Generates a list of ideas around a topic.",
		prompt: func(input string) string {
			return fmt.Sprintf("Brainstorm ideas about: %s\nReturn a bulleted list.", input)
		},
	},
}

// Catalogue lists the available agents.
func Catalogue() []Agent {
	out := make([]Agent, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup finds an agent by ID.
func Lookup(id string) (Agent, error) {
	for _, a := range catalogue {
		if a.ID == id {
			return a, nil
		}
	}
	return Agent{}, errors.Wrap(ErrUnknownAgent, id)
}
