package moredecimal

import (
	"context"
	"fmt"
	"log"
)

// Window is the user interface driving a Session.
type Window interface {
	Sink
	// ClearText empties the message log.
	ClearText()
	EnableStage(enabled bool)
	EnableCommit(enabled bool)
	// Selection returns the selected security and the requested number of
	// decimal places.
	Selection() (security string, decimals int, err error)
	// DisableActions disables every control, after a successful commit.
	DisableActions()
}

// Session connects a Window to a Changer. It is the outermost boundary of the
// stage and commit actions: every failure ends up in the window log.
type Session struct {
	changer *Changer
	book    Book
	win     Window
}

// NewSession returns a session changing decimals in book.
func NewSession(book Book, catalog Catalog, win Window) *Session {
	return &Session{
		changer: NewChanger(book, catalog, win),
		book:    book,
		win:     win,
	}
}

// Changer returns the changer driven by the session.
func (s *Session) Changer() *Changer { return s.changer }

// Securities returns the securities the window can offer.
func (s *Session) Securities(ctx context.Context) ([]Security, error) {
	return Selectable(ctx, s.book)
}

// Stage validates and stages the window's current selection.
func (s *Session) Stage(ctx context.Context) (report StageReport, err error) {
	defer s.recover(&err)
	s.win.ClearText()
	s.changer.Forget()
	security, decimals, err := s.win.Selection()
	if err != nil {
		s.handleError(err)
		return report, err
	}
	report, err = s.changer.ChangeDecimals(ctx, security, decimals)
	if err != nil {
		s.handleError(err)
		return report, err
	}
	s.win.EnableCommit(s.changer.IsModified())
	return report, nil
}

// Commit applies the staged changes. After a successful commit the window
// is disabled.
func (s *Session) Commit(ctx context.Context) (report CommitReport, err error) {
	defer s.recover(&err)
	report, err = s.changer.Commit(ctx)
	if err != nil {
		s.handleError(err)
		return report, err
	}
	s.win.DisableActions()
	return report, nil
}

func (s *Session) recover(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("unexpected failure: %v", r)
		s.handleError(*err)
	}
}

func (s *Session) handleError(err error) {
	s.win.AddText(err.Error())
	s.win.EnableCommit(false)
	log.Printf("decimal change failed: %v", err)
}
