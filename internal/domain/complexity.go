package domain

import "fmt"

// Complexity represents a task's declared implementation complexity on a
// 1-5 scale. This is a value object that enforces the valid range.
type Complexity int

// Complexity bounds
const (
	MinComplexity Complexity = 1
	MaxComplexity Complexity = 5
)

// NewComplexity creates a new Complexity value object with validation
func NewComplexity(value int) (Complexity, error) {
	c := Complexity(value)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c, nil
}

// Validate checks if the complexity is within the valid range
func (c Complexity) Validate() error {
	if c < MinComplexity || c > MaxComplexity {
		return fmt.Errorf("invalid complexity %d: must be between %d and %d", int(c), int(MinComplexity), int(MaxComplexity))
	}
	return nil
}

// Int returns the integer representation
func (c Complexity) Int() int {
	return int(c)
}
