// Package prompt implements the interactive artist picker used when a
// search is ambiguous.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
)

// Selector asks a human to pick between artist candidates. When the
// session is not interactive it falls back to the top-ranked candidate.
type Selector struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// New creates a Selector with explicit streams.
func New(in io.Reader, out io.Writer, interactive bool) *Selector {
	return &Selector{in: in, out: out, interactive: interactive}
}

// Detect builds a Selector on stdin/stderr, interactive only when stdin
// is a terminal.
func Detect() *Selector {
	return New(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())))
}

// Interactive reports whether a human is making the call.
func (s *Selector) Interactive() bool { return s.interactive }

// SelectArtist shows the candidates and reads a 1-based choice. An
// empty answer picks the first candidate. Without a terminal the first
// candidate is chosen silently.
func (s *Selector) SelectArtist(ctx context.Context, query string, candidates []provider.ArtistCandidate) (int, error) {
	if !s.interactive {
		return 0, nil
	}

	fmt.Fprintf(s.out, "%q matches %d artists:\n", query, len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(s.out, "  [%d] %s%s\n", i+1, c.Name, describe(c))
	}
	fmt.Fprintf(s.out, "Pick one [1-%d, default 1]: ", len(candidates))

	line, err := s.readLine(ctx)
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(candidates) {
		return 0, fmt.Errorf("invalid choice %q", line)
	}
	return n - 1, nil
}

// readLine reads one line without blocking past cancellation. On
// cancellation the reader goroutine stays blocked on stdin until the
// process exits; acceptable for a one-shot CLI.
func (s *Selector) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && r.err != io.EOF {
			return "", r.err
		}
		return r.line, nil
	}
}

// describe renders the disambiguating details next to a candidate name.
func describe(c provider.ArtistCandidate) string {
	var parts []string
	if c.Disambiguation != "" {
		parts = append(parts, c.Disambiguation)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	if c.BeginDate != "" {
		span := c.BeginDate
		if c.EndDate != "" {
			span += "-" + c.EndDate
		}
		parts = append(parts, span)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
