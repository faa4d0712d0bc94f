package automaton

import "errors"

var (
	ErrNilGrid  = errors.New("automaton: grid is nil")
	ErrNilPool  = errors.New("automaton: pool is nil")
	ErrNilStamp = errors.New("automaton: stamp is nil")
)
