// Package model defines the data structures for test discovery and execution.
package model

// Path represents a file system path.
type Path string

func (p Path) String() string {
	return string(p)
}
