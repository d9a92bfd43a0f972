package ai

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// Generator turns prompts into diagram graphs through a chat model.
// It owns prompt construction and response parsing; the Client underneath
// handles transport, retries, and caching.
type Generator struct {
	Client *Client
	Logger *log.Logger
}

// NewGenerator creates a Generator. A nil logger falls back to the
// default logger.
func NewGenerator(client *Client, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{Client: client, Logger: logger}
}

// Generate creates a new diagram of the given type from a prompt.
// Node positions are placeholders; run the layout engine on the result.
func (g *Generator) Generate(ctx context.Context, typ, prompt string, refresh bool) (*graph.Graph, Usage, error) {
	if err := errors.ValidatePrompt(prompt); err != nil {
		return nil, Usage{}, err
	}
	if !graph.ValidType(typ) {
		return nil, Usage{}, errors.New(errors.ErrCodeInvalidType, "unknown diagram type %q", typ)
	}

	return g.complete(ctx, typ, GeneratePrompt(typ, prompt), refresh)
}

// Expand adds to an existing diagram following an instruction. Existing
// node ids are preserved; the model returns the complete updated graph.
func (g *Generator) Expand(ctx context.Context, current *graph.Graph, instruction string, refresh bool) (*graph.Graph, Usage, error) {
	if err := errors.ValidatePrompt(instruction); err != nil {
		return nil, Usage{}, err
	}
	snapshot, err := graph.Marshal(*current)
	if err != nil {
		return nil, Usage{}, err
	}

	return g.complete(ctx, current.Type, ExpandPrompt(current.Type, snapshot, instruction), refresh)
}

// Rewrite restructures an existing diagram under an instruction, keeping
// ids stable for nodes that keep their meaning.
func (g *Generator) Rewrite(ctx context.Context, current *graph.Graph, instruction string, refresh bool) (*graph.Graph, Usage, error) {
	if err := errors.ValidatePrompt(instruction); err != nil {
		return nil, Usage{}, err
	}
	snapshot, err := graph.Marshal(*current)
	if err != nil {
		return nil, Usage{}, err
	}

	return g.complete(ctx, current.Type, RewritePrompt(current.Type, snapshot, instruction), refresh)
}

func (g *Generator) complete(ctx context.Context, typ string, messages []Message, refresh bool) (*graph.Graph, Usage, error) {
	completion, err := g.Client.Complete(ctx, messages, refresh)
	if err != nil {
		return nil, Usage{}, err
	}

	parsed, err := ParseGraph(typ, completion.Content)
	if err != nil {
		g.Logger.Debug("unparseable model output", "content", truncate([]byte(completion.Content), 500))
		return nil, completion.Usage, err
	}

	g.Logger.Info("generated graph",
		"type", typ,
		"nodes", len(parsed.Nodes),
		"edges", len(parsed.Edges),
		"tokens", completion.Usage.TotalTokens)
	return parsed, completion.Usage, nil
}
