package call

// Operands walks a call's input tokens left to right.
type Operands struct {
	tokens []string
	next   int
}

func NewOperands(tokens []string) *Operands {
	return &Operands{tokens: tokens}
}

// Shift consumes and returns the next token, or fails with
// ErrMissingOperand when the list is exhausted.
func (o *Operands) Shift() (string, error) {
	if o.next >= len(o.tokens) {
		return "", ErrMissingOperand
	}
	token := o.tokens[o.next]
	o.next++
	return token, nil
}

// Remaining reports how many tokens are left unconsumed.
func (o *Operands) Remaining() int {
	return len(o.tokens) - o.next
}
