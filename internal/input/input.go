package input

import (
	"bufio"
)

// Input is the set of keys seen since the previous read.
type Input struct {
	Quit    bool
	Explode bool
	Reset   bool
	Pause   bool
	Pressed []byte
}

// Any reports whether any byte arrived.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
// Escape sequences (arrow keys and the like) are skipped.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Input{Pressed: buf}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			i += 2
			continue
		}

		applyByte(&in, b)
	}
	if s.closed {
		in.Quit = true
	}
	return in
}

// applyByte maps a single key to its command.
func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
		in.Quit = true
	case 'e', 'E', ' ':
		in.Explode = true
	case 'r', 'R':
		in.Reset = true
	case 'p', 'P':
		in.Pause = true
	}
}
