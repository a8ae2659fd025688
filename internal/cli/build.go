package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kbukum/netfoundation/httpclient"
)

func newBuildCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build <descriptor.yaml>",
		Short: "Print the assembled request without sending it",
		Long: `Assemble the request described by a descriptor file under the current
settings and print it: request line, headers and body. Useful to check how
encoding flags change the query string and body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd.OutOrStdout(), opts, args[0])
		},
	}
}

func build(w io.Writer, opts *options, path string) error {
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

	req, err := httpclient.Assemble(d.Route(), fc.Network)
	if err != nil {
		return err
	}
	if upload {
		req = req.WithBody(payload.Data, payload.ContentType)
	}
	return writeRequest(w, req)
}

// writeRequest prints req in HTTP/1.1 message form with credentials
// masked. Binary bodies are summarized.
func writeRequest(w io.Writer, req *httpclient.TransportRequest) error {
	req = req.Redacted()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", req.Method, req.URL)

	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range req.Header[k] {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	if req.Timeout > 0 {
		fmt.Fprintf(&b, "# timeout: %s\n", req.Timeout)
	}

	if len(req.Body) > 0 {
		b.WriteString("\n")
		if utf8.Valid(req.Body) {
			b.Write(req.Body)
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "[%d bytes of binary data]\n", len(req.Body))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
