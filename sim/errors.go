package sim

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePosition = errors.New("sim: position already open for symbol")
	ErrPositionClosed    = errors.New("sim: position is closed")
	ErrPositionOpen      = errors.New("sim: position is still open")
	ErrInvalidPosition   = errors.New("sim: invalid position")
)

// InvariantError reports a broken state-machine transition. It carries a
// copy of the position as it was when the violation was detected.
type InvariantError struct {
	Op       string
	Msg      string
	Position Position
	Err      error
}

func (e *InvariantError) Error() string {
	p := e.Position
	return fmt.Sprintf("sim: invariant violated in %s: %s [%s %s entry=%.4f stop=%.4f orig_stop=%.4f target=%.4f shares=%d/%d be=%t s1=%t s2=%t exit=%q]",
		e.Op, e.Msg, p.Symbol, p.Direction, p.EntryPrice, p.StopPrice, p.OriginalStop,
		p.TargetPrice, p.SharesRemaining, p.SharesTotal, p.BreakevenActivated,
		p.Scale1Done, p.Scale2Done, p.ExitReason)
}

func (e *InvariantError) Unwrap() error { return e.Err }

func invariant(p *Position, op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Msg: fmt.Sprintf(format, args...), Position: p.Snapshot()}
}
