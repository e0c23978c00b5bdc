package limits

import "fmt"

// Budget caps the number of instruction words a VM may execute. A nil
// budget or a zero limit never runs out.
type Budget struct {
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func (b *Budget) Reset() {
	if b != nil {
		b.used = 0
	}
}

type StepLimitError struct {
	Limit int64
}

func (e StepLimitError) Error() string {
	return fmt.Sprintf("step limit exceeded (%d words)", e.Limit)
}

func (b *Budget) Charge(n int64) error {
	if b == nil || b.limit == 0 || n <= 0 {
		return nil
	}
	if b.used+n > b.limit {
		return StepLimitError{Limit: b.limit}
	}
	b.used += n
	return nil
}
