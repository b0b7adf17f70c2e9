package model

// Scope acquires a scoped setting (autocast, fuser, a compiler flag) and
// returns the func that restores it. A nil restore is allowed.
type Scope func() (restore func(), err error)

// within runs fn inside scopes. Scopes are entered in order and restored in
// reverse on every exit path, panics included. If a scope fails to enter,
// the ones already entered are restored and fn does not run.
func within(scopes []Scope, fn Func) error {
	restores := make([]func(), 0, len(scopes))
	defer func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}()
	for _, s := range scopes {
		restore, err := s()
		if err != nil {
			return err
		}
		if restore != nil {
			restores = append(restores, restore)
		}
	}
	return fn()
}
