package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

type instrumented struct {
	next Generator
	log  logger.Logger
}

// Instrument records latency and failures of next and logs every failure.
func Instrument(next Generator, log logger.Logger) Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &instrumented{next: next, log: log.Named("llm")}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := i.next.Generate(ctx, req)
	elapsed := time.Since(start)
	metrics.RecordGeneration(i.next.Name(), elapsed, err != nil)
	if err != nil {
		err = wrapGeneration(err)
		i.log.Error(ctx, "generation failed",
			logger.String("provider", i.next.Name()),
			logger.String("model", req.Model),
			logger.Duration("latency", elapsed),
			logger.Error(err))
		return "", err
	}
	i.log.Debug(ctx, "generation completed",
		logger.String("provider", i.next.Name()),
		logger.Int("chars", len(text)),
		logger.Duration("latency", elapsed))
	return text, nil
}

func wrapGeneration(err error) error {
	if errors.Is(err, ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGeneration, err)
}
