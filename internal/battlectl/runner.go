package battlectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/devxbattle/pkg/logger"
)

// Call is one request against the server.
type Call func(ctx context.Context, c *Client) (Response, error)

// Run executes call and prints the reply body, indented when it is JSON.
// Bodies of non-2xx replies are printed too before the error is returned.
func Run(ctx context.Context, cfg *Config, out io.Writer, name string, call Call) error {
	log := logger.Nop()
	if cfg.Verbose {
		log = logger.Get().Named("battlectl")
	}
	start := time.Now()

	resp, err := call(ctx, NewClient(cfg))
	var se *StatusError
	switch {
	case errors.As(err, &se):
		resp = Response{Status: se.Status, Body: se.Body}
	case err != nil:
		log.Error(ctx, "request failed", logger.String("command", name), logger.Error(err))
		return err
	}
	log.Info(ctx, "request finished",
		logger.String("command", name),
		logger.Int("status", resp.Status),
		logger.Duration("took", time.Since(start)))

	if werr := writeBody(out, resp.Body); werr != nil {
		return fmt.Errorf("write output: %w", werr)
	}
	return err
}

func writeBody(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if json.Indent(&buf, bytes.TrimSpace(body), "", "  ") != nil {
		buf.Reset()
		buf.Write(body)
	}
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	_, err := out.Write(buf.Bytes())
	return err
}
