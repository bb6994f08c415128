// Package answer holds the free-form question sources and the ordered chain
// that tries them. Adding or removing a source is a change to the slice
// passed to NewChain, not to control flow.
package answer

import (
	"context"

	"go.uber.org/zap"
)

// Source attempts to answer a question. ok=false means "no answer here";
// sources swallow their own upstream failures.
type Source interface {
	Name() string
	Attempt(ctx context.Context, query string) (text string, ok bool)
}

type Chain struct {
	sources []Source
	log     *zap.Logger
}

func NewChain(log *zap.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, log: log.With(zap.String("component", "answer"))}
}

// Answer returns the first usable answer and the name of the source that
// produced it. ok=false when every source came up empty.
func (c *Chain) Answer(ctx context.Context, query string) (text, source string, ok bool) {
	for _, s := range c.sources {
		if text, ok := s.Attempt(ctx, query); ok {
			c.log.Debug("answered", zap.String("source", s.Name()))
			return text, s.Name(), true
		}
		c.log.Debug("no answer, advancing", zap.String("source", s.Name()))
	}
	return "", "", false
}
