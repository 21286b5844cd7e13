package launch

import (
	"github.com/krazyTry/launchpad-go/shared"
)

// enter claims the launch's scope guard. Any call arriving while another
// operation holds it, including calls made from inside a graduation
// settlement callback, fails as a state error instead of observing
// half-applied state.
func (l *Launch) enter(op string) error {
	if !l.busy.CompareAndSwap(false, true) {
		return shared.StateErrf(op, "launch %s is busy", l.ID)
	}
	return nil
}

func (l *Launch) exit() {
	l.busy.Store(false)
}
