package model

// PruneResult counts what one retention sweep removed
type PruneResult struct {
	Events   int
	Memories int
}
