package gc

type scopeMode uint8

const (
	scopeTable scopeMode = iota
	scopeSystem
	scopeAnonymous
)

func (m scopeMode) String() string {
	switch m {
	case scopeTable:
		return "TABLE"
	case scopeSystem:
		return "SYSTEM"
	default:
		return "ANONYMOUS"
	}
}

// loaderRole is what the selector needs to know about the iterated loader.
type loaderRole struct {
	bootstrap     bool
	anonymousHost bool
}

// initialScope picks the first source. Being the anonymous host takes
// precedence over being the bootstrap loader.
func initialScope(role loaderRole) scopeMode {
	if role.anonymousHost {
		return scopeAnonymous
	}
	return scopeTable
}

// scopeAfterExhausted is the selector transition taken when the source of
// mode runs dry. It reports false when the enumeration is over. Only the
// bootstrap loader's table continues, into the system classes.
func scopeAfterExhausted(mode scopeMode, role loaderRole) (scopeMode, bool) {
	if mode == scopeTable && role.bootstrap {
		return scopeSystem, true
	}
	return mode, false
}
