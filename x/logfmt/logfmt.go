// Package logfmt renders log records as "msg key=value ..." without fmt or
// strconv, for firmware where those packages cost too much flash.
package logfmt

import "io"

// Printer is a leveled logger writing one line per record. A nil Out prints
// with the println builtin. It satisfies x52.Logger and ratex.Logger.
type Printer struct {
	Prefix  string // e.g. "[x52] "
	Verbose bool   // emit Debug records
	Out     io.Writer
}

func (p *Printer) Debug(msg string, args ...any) {
	if p.Verbose {
		p.emit("DEBUG ", msg, args)
	}
}

func (p *Printer) Info(msg string, args ...any)  { p.emit("INFO ", msg, args) }
func (p *Printer) Error(msg string, args ...any) { p.emit("ERROR ", msg, args) }

func (p *Printer) emit(level, msg string, args []any) {
	buf := make([]byte, 0, 96)
	buf = append(buf, p.Prefix...)
	buf = append(buf, level...)
	buf = Append(buf, msg, args...)
	if p.Out == nil {
		println(string(buf))
		return
	}
	buf = append(buf, '\n')
	_, _ = p.Out.Write(buf)
}

// Append appends msg and the key/value pairs in args. A trailing key
// without value is written as key=!MISSING.
func Append(buf []byte, msg string, args ...any) []byte {
	buf = append(buf, msg...)
	for i := 0; i < len(args); i += 2 {
		buf = append(buf, ' ')
		buf = appendValue(buf, args[i], false)
		buf = append(buf, '=')
		if i+1 < len(args) {
			buf = appendValue(buf, args[i+1], true)
		} else {
			buf = append(buf, "!MISSING"...)
		}
	}
	return buf
}

func appendValue(b []byte, v any, quote bool) []byte {
	switch x := v.(type) {
	case string:
		return appendString(b, x, quote)
	case error:
		return appendString(b, x.Error(), quote)
	case interface{ String() string }:
		return appendString(b, x.String(), quote)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return Itoa(b, int64(x))
	case int8:
		return Itoa(b, int64(x))
	case int16:
		return Itoa(b, int64(x))
	case int32:
		return Itoa(b, int64(x))
	case int64:
		return Itoa(b, x)
	case uint:
		return Utoa(b, uint64(x))
	case uint8:
		return Utoa(b, uint64(x))
	case uint16:
		return Utoa(b, uint64(x))
	case uint32:
		return Utoa(b, uint64(x))
	case uint64:
		return Utoa(b, x)
	case float32:
		return Ftoa2(b, float64(x))
	case float64:
		return Ftoa2(b, x)
	case nil:
		return append(b, "<nil>"...)
	default:
		return append(b, "<?>"...)
	}
}

func appendString(b []byte, s string, quote bool) []byte {
	if !quote || !needsQuote(s) {
		return append(b, s...)
	}
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b = append(b, '\\', c)
		case '\n':
			b = append(b, '\\', 'n')
		default:
			b = append(b, c)
		}
	}
	return append(b, '"')
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; c <= ' ' || c == '=' || c == '"' || c == '\\' {
			return true
		}
	}
	return false
}

// Utoa appends the decimal form of n.
func Utoa(b []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(b, tmp[i:]...)
}

// Itoa appends the decimal form of n.
func Itoa(b []byte, n int64) []byte {
	if n < 0 {
		return Utoa(append(b, '-'), uint64(-n))
	}
	return Utoa(b, uint64(n))
}

// Ftoa2 appends x rounded to two decimals. Magnitudes beyond int64 are
// written as "inf".
func Ftoa2(b []byte, x float64) []byte {
	if x != x {
		return append(b, "NaN"...)
	}
	if x < 0 {
		b = append(b, '-')
		x = -x
	}
	if x >= 9e16 {
		return append(b, "inf"...)
	}
	c := uint64(x*100 + 0.5)
	b = Utoa(b, c/100)
	b = append(b, '.')
	f := c % 100
	return append(b, byte('0'+f/10), byte('0'+f%10))
}
