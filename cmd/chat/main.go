// Package main is a terminal chat client for the streaming API. It
// renders the model's reasoning phase and final answer live as frames
// arrive.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thoughtstream-ai/reasoning-platform/internal/model"
	"github.com/thoughtstream-ai/reasoning-platform/internal/session"
	"github.com/thoughtstream-ai/reasoning-platform/internal/stream"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
)

// consoleRenderer paints reducer state changes to the terminal. Each
// delta is written before the next event is applied, so the output shows
// the stream exactly as it arrived.
type consoleRenderer struct {
	out            io.Writer
	reasoningShown bool
	answerShown    bool
}

func (r *consoleRenderer) ReasoningDelta(_ string, delta string) {
	if !r.reasoningShown {
		fmt.Fprint(r.out, "Reasoning:\n")
		r.reasoningShown = true
	}
	fmt.Fprint(r.out, delta)
}

func (r *consoleRenderer) PhaseSwitch(_ string) {
	fmt.Fprint(r.out, "\n\nAnswer:\n")
	r.answerShown = true
}

func (r *consoleRenderer) AnswerDelta(_ string, delta string) {
	if !r.answerShown {
		fmt.Fprint(r.out, "Answer:\n")
		r.answerShown = true
	}
	fmt.Fprint(r.out, delta)
}

func (r *consoleRenderer) Complete(msg model.Message) {
	fmt.Fprintf(r.out, "\n\nDone. %d reasoning words, %d answer words.\n",
		len(strings.Fields(msg.Reasoning)), len(strings.Fields(msg.Answer)))
}

func (r *consoleRenderer) Error(message string) {
	fmt.Fprintf(r.out, "\n\nError: %s\n", message)
}

func (r *consoleRenderer) reset() {
	r.reasoningShown = false
	r.answerShown = false
}

func runTurn(ctx context.Context, client *stream.Client, reducer *session.Reducer, renderer *consoleRenderer, query, systemPrompt string) {
	renderer.reset()
	reducer.AddUserMessage(query)
	if _, err := reducer.BeginTurn(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	err := client.Stream(ctx, &model.ChatRequest{
		Query:        query,
		SystemPrompt: systemPrompt,
	}, func(ev model.StreamEvent) error {
		reducer.Apply(ev)
		return nil
	})
	if err == nil {
		return
	}

	var turnErr *stream.TurnError
	switch {
	case errors.As(err, &turnErr):
		// The reducer already discarded the partial message via the
		// decoded error event.
	case errors.Is(err, stream.ErrNoTerminalEvent):
		reducer.Fail("connection closed before the response completed")
	case errors.Is(err, context.Canceled):
		reducer.Fail("request canceled")
	default:
		reducer.Fail(err.Error())
	}
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the streaming API")
	systemPrompt := flag.String("system", "", "optional system prompt")
	flag.Parse()

	log, err := logger.New("warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := stream.NewClient(*serverURL, log)
	renderer := &consoleRenderer{out: os.Stdout}
	reducer := session.NewReducer(renderer)
	ctx := context.Background()

	// One-shot mode: the query is given as arguments.
	if flag.NArg() > 0 {
		runTurn(ctx, client, reducer, renderer, strings.Join(flag.Args(), " "), *systemPrompt)
		if reducer.LastError() != "" {
			os.Exit(1)
		}
		return
	}

	// Interactive mode.
	fmt.Println("Connected to", *serverURL, "- type a question, or /clear, /quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/clear":
			reducer.Clear()
			fmt.Println("history cleared")
			continue
		}
		runTurn(ctx, client, reducer, renderer, line, *systemPrompt)
	}
}
