package turn

import (
	"context"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/normalize"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
)

// Pipeline is format -> invoke -> parse, each step swappable.
type Pipeline struct {
	Template   prompt.Template
	Backend    backend.Backend
	Normalizer *normalize.Normalizer
}

// Run turns one trimmed query into normalized reply text.
func (p Pipeline) Run(ctx context.Context, query string) (string, error) {
	messages := p.Template.Format(query)

	raw, err := p.Backend.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	if p.Normalizer == nil {
		return raw, nil
	}
	return p.Normalizer.Apply(raw), nil
}
