package comm

// Framing bytes.
const (
	Delimiter  byte = '\n'
	EscapeByte byte = '\\'
	escapedLF  byte = 'n'
)

// MaxFrameLen is the capacity of the receive buffer. Bytes beyond it are
// dropped until the next delimiter.
const MaxFrameLen = 2048

// AppendEscaped appends src to dst with delimiter and escape bytes escaped.
func AppendEscaped(dst, src []byte) []byte {
	for _, b := range src {
		switch b {
		case Delimiter:
			dst = append(dst, EscapeByte, escapedLF)
		case EscapeByte:
			dst = append(dst, EscapeByte, EscapeByte)
		default:
			dst = append(dst, b)
		}
	}
	return dst
}

// Escape returns src escaped.
func Escape(src []byte) []byte {
	return AppendEscaped(make([]byte, 0, len(src)), src)
}

// Unescape reverses Escape. A dangling escape byte at the end is dropped.
func Unescape(src []byte) []byte {
	out := make([]byte, 0, len(src))
	esc := false
	for _, b := range src {
		if esc {
			esc = false
			if b == escapedLF {
				b = Delimiter
			}
			out = append(out, b)
			continue
		}
		if b == EscapeByte {
			esc = true
			continue
		}
		out = append(out, b)
	}
	return out
}

// Decoder reassembles frames from a byte stream, one byte per call,
// without allocating.
type Decoder struct {
	buf     [MaxFrameLen]byte
	n       int
	esc     bool
	dropped int
}

// Feed consumes one byte. When b ends a frame, the unescaped frame is
// returned with ok set. The frame aliases the decoder buffer and is only
// valid until the next call to Feed.
func (d *Decoder) Feed(b byte) (frame []byte, ok bool) {
	if d.esc {
		d.esc = false
		if b == escapedLF {
			b = Delimiter
		}
		d.push(b)
		return
	}
	switch b {
	case Delimiter:
		frame, d.n = d.buf[:d.n], 0
		return frame, true
	case EscapeByte:
		d.esc = true
	default:
		d.push(b)
	}
	return
}

// Dropped returns the number of bytes dropped on overflow so far.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Reset discards a partially received frame.
func (d *Decoder) Reset() {
	d.n, d.esc = 0, false
}

func (d *Decoder) push(b byte) {
	if d.n < MaxFrameLen {
		d.buf[d.n] = b
		d.n++
	} else {
		d.dropped++
	}
}
