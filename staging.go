package moredecimal

// pendingChange is a validated rescale of one split, applied at commit.
type pendingChange struct {
	txn   string
	split string
}

// stagingSet holds the changes validated for one (security, decimals) request.
type stagingSet struct {
	security     string
	fromDecimals int
	decimals     int
	shift        int

	changes  []pendingChange
	accounts int // affected accounts
}

// open starts a new request, dropping anything staged before.
func (s *stagingSet) open(security string, fromDecimals, decimals int) {
	*s = stagingSet{
		security:     security,
		fromDecimals: fromDecimals,
		decimals:     decimals,
		shift:        decimals - fromDecimals,
	}
}

// stage adds the changes of one fully validated account.
func (s *stagingSet) stage(changes ...pendingChange) {
	s.changes = append(s.changes, changes...)
	s.accounts++
}

func (s *stagingSet) reset() { *s = stagingSet{} }

func (s *stagingSet) modified() bool { return s.accounts != 0 || len(s.changes) != 0 }
