package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack holds subroutine return addresses.
type Stack struct {
	Data []uint16
}

// Push a return address. Fails with ErrStackFull at STACK_LIMIT.
func (s *Stack) Push(addr uint16) (err error) {
	if s.Full() {
		err = ErrStackFull
		return
	}
	s.Data = append(s.Data, addr)
	return
}

// Pop the most recent return address. Fails with ErrStackEmpty.
func (s *Stack) Pop() (addr uint16, err error) {
	addr, ok := s.Peek()
	if !ok {
		err = ErrStackEmpty
		return
	}
	s.Data = s.Data[:len(s.Data)-1]
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) >= STACK_LIMIT
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (addr uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
