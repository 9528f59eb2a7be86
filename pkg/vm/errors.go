package vm

import "github.com/rotisserie/eris"

var (
	ErrClassNotFound  = eris.New("class not found")
	ErrDuplicateClass = eris.New("class already defined")
	ErrNoTable        = eris.New("class loader has no class table")
	ErrNotValueType   = eris.New("class is not a value type")
	ErrChainHead      = eris.New("null-restricted array classes do not head an array chain")
)
