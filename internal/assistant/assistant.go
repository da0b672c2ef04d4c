// Package assistant answers operator questions, from a fixed knowledge table
// or from an optional generative backend.
package assistant

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"airdarwin-gcs/internal/logging"
)

// Thinking is returned by Ask when a backend request was started.
const Thinking = "Assistant is thinking..."

const maxAnswerLen = 200

// Backend generates free-text answers.
type Backend interface {
	Generate(ctx context.Context, question string) (string, error)
}

// Assistant runs at most one backend request at a time. Answers are
// delivered on a single-slot channel; a newer answer replaces an
// undelivered older one, so answers are not paired with questions.
type Assistant struct {
	backend Backend
	timeout time.Duration
	sem     *semaphore.Weighted
	answers chan string
}

// New returns an assistant. A nil backend answers every question from the
// knowledge table.
func New(backend Backend, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Assistant{
		backend: backend,
		timeout: timeout,
		sem:     semaphore.NewWeighted(1),
		answers: make(chan string, 1),
	}
}

// Answers delivers asynchronous backend answers.
func (a *Assistant) Answers() <-chan string { return a.answers }

// Ask returns an immediate answer. With an idle backend it starts a request
// and returns Thinking; the result arrives on Answers. A busy backend falls
// back to the knowledge table.
func (a *Assistant) Ask(ctx context.Context, question string) string {
	if a.backend == nil || !a.sem.TryAcquire(1) {
		return Fallback(question)
	}
	go func() {
		defer a.sem.Release(1)
		a.deliver(a.generate(ctx, question))
	}()
	return Thinking
}

func (a *Assistant) generate(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	answer, err := a.backend.Generate(ctx, question)
	if err != nil {
		logging.FromContext(ctx).Warn("assistant backend failed", "err", err)
		return Fallback(question)
	}
	answer = strings.TrimSpace(answer)
	if len(answer) > maxAnswerLen {
		answer = strings.TrimSpace(truncate(answer, maxAnswerLen))
	}
	if answer == "" {
		return Fallback(question)
	}
	return answer
}

func (a *Assistant) deliver(answer string) {
	for {
		select {
		case a.answers <- answer:
			return
		default:
		}
		select {
		case <-a.answers:
		default:
		}
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
