package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ligustah/geogate/internal/locale"
	"github.com/ligustah/geogate/internal/portal"
)

// drainTimeout bounds how long quit waits for in-flight downloads.
const drainTimeout = time.Minute

const sessionHelp = `Commands:
  catalog        list documents
  download <id>  download a document (runs in the background)
  emergency      direct download of the primary document
  status         show workflow states and the cached location
  wait           wait for running downloads
  logs           show the audit log
  back           return to the portal view
  quit           wait for running downloads and exit`

func newSessionCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive portal session sharing one location fix",
		Long: `Start an interactive session. The location captured by the first download
is reused by every later download until the session ends.

` + sessionHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			out := &syncWriter{w: cmd.OutOrStdout()}
			a, err := openApp(cmd.Context(), cfg, cmd.ErrOrStderr(), func(tr portal.Transition) {
				printTransition(out, tr)
			})
			if err != nil {
				return err
			}
			defer a.close()

			s := &session{app: a, out: out}
			done := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.notify(done)
			}()

			err = s.loop(cmd, cmd.InOrStdin())
			close(done)
			wg.Wait()
			s.flush()
			// Display-window resets may still fire; keep them off the output.
			out.Close()
			return err
		},
	}
}

type session struct {
	app *app
	out io.Writer
}

// notify prints capture notices until done is closed.
func (s *session) notify(done <-chan struct{}) {
	for {
		select {
		case c := <-s.app.portal.Captures():
			printCapture(s.out, s.app.tag, c)
		case <-done:
			return
		}
	}
}

// flush prints notices that arrived after notify stopped.
func (s *session) flush() {
	for {
		select {
		case c := <-s.app.portal.Captures():
			printCapture(s.out, s.app.tag, c)
		default:
			return
		}
	}
}

func (s *session) loop(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	p := s.app.portal

	fmt.Fprintln(s.out, sessionHelp)
	fmt.Fprintln(s.out, locale.Text(s.app.tag, locale.LocationMandatory))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "geogate> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "catalog", "back":
			if fields[0] == "back" {
				fmt.Fprintf(s.out, "%s\n", locale.Text(s.app.tag, locale.BackToDashboard))
			}
			printCatalog(s.out, p.Items())
		case "download":
			if len(fields) != 2 {
				fmt.Fprintln(s.out, "usage: download <id>")
				continue
			}
			ok, err := p.Download(ctx, fields[1])
			if err != nil {
				fmt.Fprintf(s.out, "%v\n", err)
				continue
			}
			if !ok {
				fmt.Fprintf(s.out, "[geogate] %s is busy\n", fields[1])
			}
		case "emergency":
			if !p.Emergency(ctx) {
				fmt.Fprintln(s.out, "[geogate] direct download already running")
			}
		case "status":
			s.status()
		case "wait":
			if err := s.drain(); err != nil {
				return err
			}
		case "logs":
			printLogs(s.out, s.app.tag, p.Logs())
		case "quit", "exit":
			return s.drain()
		case "help":
			fmt.Fprintln(s.out, sessionHelp)
		default:
			fmt.Fprintf(s.out, "unknown command %q, try help\n", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return withCode(ExitGeneralError, fmt.Errorf("read input: %w", err))
	}
	return s.drain()
}

func (s *session) status() {
	p := s.app.portal
	if loc, ok := p.Location(); ok {
		fmt.Fprintf(s.out, "location: %s\n", loc)
	} else {
		fmt.Fprintln(s.out, "location: not captured")
	}
	for _, it := range p.Items() {
		w, err := p.Workflow(it.ID)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.out, "%-10s %s\n", it.ID, w.Snapshot().State)
	}
	fmt.Fprintf(s.out, "%-10s %s\n", "emergency", p.EmergencyWorkflow().Snapshot().State)
}

func (s *session) drain() error {
	if !s.app.portal.WaitTimeout(drainTimeout) {
		return withCode(ExitGeneralError, fmt.Errorf("downloads still running after %s", drainTimeout))
	}
	return nil
}

// syncWriter serializes writes from workflow goroutines and the prompt.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Close discards all later writes.
func (s *syncWriter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = io.Discard
}
