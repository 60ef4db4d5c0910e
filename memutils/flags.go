package memutils

import (
	"fmt"
	"strings"
)

// FlagStringMapping renders bitflag values as a pipe-separated list of registered names
type FlagStringMapping[T Number] struct {
	names map[T]string
}

func NewFlagStringMapping[T Number]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(flag T, str string) {
	m.names[flag] = str
}

func (m FlagStringMapping[T]) FlagsToString(flags T) string {
	if flags == 0 {
		return "None"
	}

	var sb strings.Builder
	for i := 0; i < 64; i++ {
		bit := T(1) << i
		if bit == 0 {
			break
		}
		if flags&bit == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("|")
		}

		name, ok := m.names[bit]
		if !ok {
			name = fmt.Sprintf("UnknownFlag(%#x)", uint64(bit))
		}
		sb.WriteString(name)
	}

	return sb.String()
}
