package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wellpath/intake/pkg/surveyclient"
)

func main() {
	var (
		serverURL string
		userID    string
		token     string
	)

	rootCmd := &cobra.Command{
		Use:   "intake-cli",
		Short: "Interactive patient intake survey",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []surveyclient.Option{}
			if token != "" {
				opts = append(opts, surveyclient.WithToken(token))
			}
			client := surveyclient.New(serverURL, userID, opts...)
			engine := surveyclient.NewEngine(client)

			prompter := &terminalPrompter{
				in:  bufio.NewReader(os.Stdin),
				out: os.Stdout,
			}
			return surveyclient.Run(ctx, engine, prompter)
		},
	}

	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8000/api/v1", "Intake API base URL")
	rootCmd.Flags().StringVar(&userID, "user", "dev-user", "User ID to run the survey as")
	rootCmd.Flags().StringVar(&token, "token", "", "Bearer token for authenticated servers")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// terminalPrompter renders questions on stdout and reads answers line by line
// from stdin. Choice options are numbered; a multi-choice answer is a
// comma-separated list of numbers.
type terminalPrompter struct {
	in  *bufio.Reader
	out *os.File
}

func (p *terminalPrompter) Ask(ctx context.Context, view *surveyclient.QuestionView, progress surveyclient.Progress) ([]string, error) {
	fmt.Fprintln(p.out)
	if progress.Max > 0 {
		fmt.Fprintf(p.out, "[%d/%d] %s\n", progress.Current, progress.Max, view.Prompt)
	} else {
		fmt.Fprintf(p.out, "%s\n", view.Prompt)
	}

	switch view.Type {
	case surveyclient.TypeText:
		if view.Placeholder != "" {
			fmt.Fprintf(p.out, "(%s)\n", view.Placeholder)
		}
		fmt.Fprint(p.out, "> ")
		line, err := p.readLine(ctx)
		if err != nil {
			return nil, err
		}
		return []string{line}, nil

	case surveyclient.TypeChoice, surveyclient.TypeMultiselect:
		for i, opt := range view.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
		}
		if view.Type == surveyclient.TypeMultiselect {
			fmt.Fprint(p.out, "Select one or more (e.g. 1,3): ")
		} else {
			fmt.Fprint(p.out, "Select one: ")
		}
		line, err := p.readLine(ctx)
		if err != nil {
			return nil, err
		}
		return resolveSelections(line, view.Options), nil
	}

	fmt.Fprint(p.out, "> ")
	line, err := p.readLine(ctx)
	if err != nil {
		return nil, err
	}
	return []string{line}, nil
}

func (p *terminalPrompter) Concluded(ctx context.Context, conclusion *surveyclient.Conclusion) error {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Survey complete.")
	if conclusion == nil {
		return nil
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, conclusion.Conclusion)
	if len(conclusion.Suggestions) > 0 {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, "Suggestions:")
		for _, s := range conclusion.Suggestions {
			fmt.Fprintf(p.out, "  - %s\n", s)
		}
	}
	return nil
}

func (p *terminalPrompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return r.line, nil
	}
}

// resolveSelections maps numeric input ("1,3") to option text. Non-numeric
// tokens pass through as-is so typing the option verbatim also works.
func resolveSelections(line string, options []string) []string {
	if line == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= len(options) {
			out = append(out, options[n-1])
			continue
		}
		out = append(out, tok)
	}
	return out
}
