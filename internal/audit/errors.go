package audit

import "errors"

// Engine faults. A run that hits one of these fails as a whole; analyzer
// abstentions and violations are never reported as errors.
var (
	ErrDetachedRoot   = errors.New("root is detached or empty")
	ErrNoTree         = errors.New("no tree reader")
	ErrNoResolver     = errors.New("no style resolver")
	ErrNoFocus        = errors.New("no focus controller")
	ErrNoWatcher      = errors.New("no mutation watcher")
	ErrScopeNotFound  = errors.New("scope not found")
	ErrEngineFault    = errors.New("engine fault")
	ErrUnknownLocale  = errors.New("unknown locale")
	ErrInvalidPattern = errors.New("invalid pattern table")
)
