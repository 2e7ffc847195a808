package graphite

import "fmt"

// MockGraphite records lines instead of sending them.
type MockGraphite struct {
	Lines   []string
	Flushes int
}

func (self *MockGraphite) Add(path string, timestamp int64, value float64) error {
	self.Lines = append(self.Lines, fmt.Sprintf("%s %v %d", path, value, timestamp))
	return nil
}

func (self *MockGraphite) Flush() error {
	self.Flushes++
	return nil
}
