// Command shardkv-cli is an interactive RESP line client for a running
// shardkv-server, modeled on sloty's liner-backed REPL: a prompt, history
// across lines, and Ctrl-C aborting the current line rather than the
// process.
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/saqif-community/shardkv/internal/resp"
)

func main() {
	addr := pflag.StringP("addr", "a", "127.0.0.1:6000", "shardkv-server address")
	pflag.Parse()

	if err := run(*addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("shardkv-cli: connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	r := resp.NewReader(conn)
	w := resp.NewWriter(conn)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	prompt := fmt.Sprintf("%s> ", addr)
	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("shardkv-cli: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		fields := splitFields(input)
		if len(fields) == 0 {
			continue
		}

		if err := writeCommand(w, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := printReply(os.Stdout, r); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// splitFields is a minimal whitespace tokenizer; it does not support
// quoting, matching the scope of a debugging REPL rather than a full
// shell-style parser.
func splitFields(s string) []string {
	return strings.Fields(s)
}

func writeCommand(w *resp.Writer, fields []string) error {
	if err := w.WriteArrayHeader(len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := w.WriteBulkString([]byte(f)); err != nil {
			return err
		}
	}
	return nil
}

func printReply(out io.Writer, r *resp.Reader) error {
	prefix, err := r.PeekTypePrefix()
	if err != nil {
		return err
	}

	switch prefix {
	case resp.SimpleString:
		s, err := r.ReadString()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", s)
		return err

	case resp.Error_:
		s, err := r.ReadError()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "(error) %s\n", s)
		return err

	case resp.Integer:
		n, err := r.ReadI64()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "(integer) %d\n", n)
		return err

	case resp.BulkString:
		body, err := r.ReadString()
		if err != nil {
			return err
		}
		if body == nil {
			_, err = fmt.Fprintln(out, "(nil)")
			return err
		}
		_, err = fmt.Fprintf(out, "%q\n", body)
		return err

	case resp.Array:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		if n < 0 {
			_, err = fmt.Fprintln(out, "(empty array)")
			return err
		}
		for i := int64(0); i < n; i++ {
			fmt.Fprintf(out, "%d) ", i+1)
			if err := printReply(out, r); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("shardkv-cli: unexpected reply prefix %q", byte(prefix))
	}
}
