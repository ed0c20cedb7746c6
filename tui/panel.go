package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/moredecimal"
)

// panel is the state of the window controls. It implements moredecimal.Window.
//
// The Model is copied on every update: the panel is shared by pointer so that
// the session always writes to the current one.
type panel struct {
	log []string

	stage, commit bool
	disabled      bool

	// selection, set by the model before staging
	security string
	target   string
}

func (p *panel) AddText(text string)      { p.log = append(p.log, text) }
func (p *panel) ClearText()               { p.log = nil }
func (p *panel) EnableStage(enabled bool) { p.stage = enabled }
func (p *panel) EnableCommit(enabled bool) {
	p.commit = enabled
}

func (p *panel) DisableActions() {
	p.stage, p.commit = false, false
	p.disabled = true
}

func (p *panel) Selection() (string, int, error) {
	if p.security == "" {
		return "", 0, fmt.Errorf("no security selected")
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.target))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", moredecimal.ErrInvalidDecimals, p.target)
	}
	return p.security, n, nil
}

var _ moredecimal.Window = (*panel)(nil)
