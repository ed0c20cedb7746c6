package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/renderer"
)

// Service exposes a Changer as request/response operations. Each response
// carries the messages the changer emitted while serving the request.
//
// Requests may come concurrently: reads of the book share mu, stage, commit
// and forget hold it exclusively.
type Service struct {
	mu       sync.RWMutex
	book     moredecimal.Book
	changer  *moredecimal.Changer
	messages []string
	onCommit func() error
}

// NewService returns a Service changing decimals in book. onCommit, if not
// nil, is called after every successful commit.
func NewService(book moredecimal.Book, catalog moredecimal.Catalog, onCommit func() error) *Service {
	s := &Service{book: book, onCommit: onCommit}
	s.changer = moredecimal.NewChanger(book, catalog, moredecimal.SinkFunc(func(text string) {
		s.messages = append(s.messages, text)
	}))
	return s
}

// ListSecurities renders the selectable securities as markdown.
func (s *Service) ListSecurities(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	securities, err := moredecimal.Selectable(ctx, s.book)
	if err != nil {
		return "", err
	}
	return renderer.SecuritiesMarkdown(securities), nil
}

// InspectSecurity renders where a security is held as markdown.
func (s *Service) InspectSecurity(ctx context.Context, security string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := moredecimal.Inspect(ctx, s.book, security)
	if err != nil {
		return "", err
	}
	return renderer.ReportMarkdown(r), nil
}

// Stage validates and stages the change of security to decimals places.
func (s *Service) Stage(ctx context.Context, security string, decimals int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil

	report, err := s.changer.ChangeDecimals(ctx, security, decimals)
	if err != nil {
		return "", err
	}
	switch {
	case report.Staged():
		s.messages = append(s.messages, "Call commit_decimals to apply these changes.")
	case report.Failed > 0:
		s.messages = append(s.messages, "Nothing staged.")
	}
	return strings.Join(s.messages, "\n"), nil
}

// Commit applies the staged changes.
func (s *Service) Commit(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil

	if _, err := s.changer.Commit(ctx); err != nil {
		if len(s.messages) > 0 {
			return "", errors.New(strings.Join(s.messages, "\n"))
		}
		return "", err
	}
	if s.onCommit != nil {
		if err := s.onCommit(); err != nil {
			return "", fmt.Errorf("changes committed but not saved: %w", err)
		}
	}
	return strings.Join(s.messages, "\n"), nil
}

// Forget drops the staged changes.
func (s *Service) Forget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified := s.changer.IsModified()
	s.changer.Forget()
	if modified {
		return "Staged changes dropped."
	}
	return "Nothing was staged."
}
