package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op is the kind of a data access in a trace.
type Op byte

// Data accesses recorded by Valgrind.
const (
	Load   Op = 'L'
	Store  Op = 'S'
	Modify Op = 'M'
)

func (o Op) String() string {
	return string(o)
}

// NumAccesses returns the number of cache accesses the operation makes. A
// modify is a load followed by a store to the same address.
func (o Op) NumAccesses() int {
	if o == Modify {
		return 2
	}

	return 1
}

// Instruction is a data access in a trace.
type Instruction struct {
	Op      Op
	Address uint64
	Size    uint64
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %x,%d", i.Op, i.Address, i.Size)
}

var (
	// ErrUnknownOp is returned for an access that is not L, S, or M.
	ErrUnknownOp = errors.New("unknown operation")

	// ErrMalformed is returned for a data access line that cannot be parsed.
	ErrMalformed = errors.New("malformed access")
)

// ParseError reports a trace line that cannot be parsed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLine parses a line of a Valgrind trace. Data accesses start with a
// space, as in " L 7ff000398,8". Other lines, such as instruction fetches,
// are skipped and reported with ok set to false.
func ParseLine(line string) (ins Instruction, ok bool, err error) {
	if !strings.HasPrefix(line, " ") {
		return Instruction{}, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) != 2 || len(fields[0]) != 1 {
		return Instruction{}, false, ErrMalformed
	}

	op := Op(fields[0][0])
	switch op {
	case Load, Store, Modify:
	default:
		return Instruction{}, false, fmt.Errorf("%w %q", ErrUnknownOp, fields[0])
	}

	addrText, sizeText, hasSize := strings.Cut(fields[1], ",")

	addr, err := strconv.ParseUint(addrText, 16, 64)
	if err != nil {
		return Instruction{}, false, fmt.Errorf("%w: address: %w", ErrMalformed, err)
	}

	ins = Instruction{Op: op, Address: addr}

	if hasSize {
		ins.Size, err = strconv.ParseUint(sizeText, 10, 64)
		if err != nil {
			return Instruction{}, false, fmt.Errorf("%w: size: %w", ErrMalformed, err)
		}
	}

	return ins, true, nil
}
