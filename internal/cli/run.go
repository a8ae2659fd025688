package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/kbukum/netfoundation/httpclient"
	"github.com/kbukum/netfoundation/logger"
	"github.com/kbukum/netfoundation/resilience"
)

type runOptions struct {
	extract string
	retries int
	repeat  int
	rate    float64
}

func newRunCommand(opts *options) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <descriptor.yaml>",
		Short: "Send the request described by a descriptor file",
		Long: `Send the request described by a descriptor file and print the response
body. Client error bodies are printed too; the exit code tells success,
client, server and network failures apart.

Examples:
  nfetch run user.yaml
  nfetch run user.yaml --extract profile.email
  nfetch run upload.yaml --retries 3
  nfetch run ping.yaml --repeat 20 --rate 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, ro, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ro.extract, "extract", "x", "", "Print only the value at this JSON path (gjson syntax)")
	f.IntVar(&ro.retries, "retries", 0, "Retry network and server failures this many times")
	f.IntVar(&ro.repeat, "repeat", 1, "Send the request this many times")
	f.Float64Var(&ro.rate, "rate", 0, "Limit repeated requests to this many per second")
	return cmd
}

func run(cmd *cobra.Command, opts *options, ro *runOptions, path string) error {
	if ro.retries < 0 || ro.repeat < 1 || ro.rate < 0 {
		return withCode(ExitFailure, errors.New("--retries and --rate must not be negative and --repeat must be at least 1"))
	}

	d, err := LoadDescriptor(path)
	if err != nil {
		return withCode(ExitDescriptorError, err)
	}
	payload, upload, err := d.Payload()
	if err != nil {
		return withCode(ExitDescriptorError, err)
	}

	fc, err := opts.load()
	if err != nil {
		return err
	}
	log := fc.newLogger(cmd.ErrOrStderr())

	var extra []httpclient.Middleware
	if ro.rate > 0 {
		rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: appName, Rate: ro.rate, Burst: 1})
		extra = append(extra, httpclient.WithRateLimiter(rl))
	}

	ctx := cmd.Context()
	c, err := newClient(ctx, fc, log, cmd.ErrOrStderr(), opts.noColor, extra...)
	if err != nil {
		return err
	}
	defer c.Close()

	route := d.Route()
	send := func() ([]byte, error) {
		if upload {
			return c.svc.UploadRaw(ctx, route, payload)
		}
		return c.svc.FetchRaw(ctx, route)
	}

	retry := resilience.RetryConfig{
		MaxAttempts:    ro.retries + 1,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2,
		Jitter:         0.1,
		RetryIf:        httpclient.IsRetryable,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			fields := logger.ErrorFields("fetch", err)
			fields["attempt"] = attempt
			fields["backoff_ms"] = backoff.Milliseconds()
			log.Warn("retrying request", fields)
		},
	}

	out := cmd.OutOrStdout()
	for range ro.repeat {
		body, err := resilience.Retry(ctx, retry, send)
		if err != nil {
			writeErrorBody(out, err)
			return err
		}
		if err := writeBody(out, body, ro.extract); err != nil {
			return err
		}
	}
	return nil
}

// writeBody prints body, or the value at path when path is set.
func writeBody(w io.Writer, body []byte, path string) error {
	if path == "" {
		return writeRaw(w, body)
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("--extract: response body is not JSON")
	}
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return fmt.Errorf("--extract: path %q not found in response", path)
	}
	_, err := fmt.Fprintln(w, res.String())
	return err
}

// writeErrorBody prints the body carried by a client error or an unexpected
// status so the server's message is not lost.
func writeErrorBody(w io.Writer, err error) {
	var e *httpclient.Error
	if errors.As(err, &e) && len(e.Body) > 0 {
		_ = writeRaw(w, e.Body)
	}
}

func writeRaw(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if !bytes.HasSuffix(body, []byte("\n")) {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
