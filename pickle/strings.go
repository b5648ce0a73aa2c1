package pickle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// unquote undoes the repr quoting of protocol 0 STRING arguments.
func unquote(b []byte) ([]byte, error) {
	if len(b) < 2 || (b[0] != '\'' && b[0] != '"') || b[len(b)-1] != b[0] {
		return nil, errors.New("string argument not quoted")
	}
	b = b[1 : len(b)-1]
	res := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' {
			res = append(res, c)
			continue
		}
		i++
		if i == len(b) {
			return nil, errors.New("trailing backslash")
		}
		switch c = b[i]; c {
		case '\n':
		case '\\', '\'', '"':
			res = append(res, c)
		case 'a':
			res = append(res, '\a')
		case 'b':
			res = append(res, '\b')
		case 'f':
			res = append(res, '\f')
		case 'n':
			res = append(res, '\n')
		case 'r':
			res = append(res, '\r')
		case 't':
			res = append(res, '\t')
		case 'v':
			res = append(res, '\v')
		case 'x':
			if i+2 >= len(b) {
				return nil, errors.New("truncated \\x escape")
			}
			v, err := strconv.ParseUint(string(b[i+1:i+3]), 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid \\x escape: %w", err)
			}
			res = append(res, byte(v))
			i += 2
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(string(b[i:j]), 8, 16)
			res = append(res, byte(v))
			i = j - 1
		default:
			res = append(res, '\\', c)
		}
	}
	return res, nil
}

// rawUnicodeEscape decodes protocol 0 UNICODE arguments: latin-1 bytes with
// \uXXXX and \UXXXXXXXX escapes.
func rawUnicodeEscape(b []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' || i+1 == len(b) || (b[i+1] != 'u' && b[i+1] != 'U') {
			sb.WriteRune(rune(c))
			continue
		}
		n := 4
		if b[i+1] == 'U' {
			n = 8
		}
		if i+2+n > len(b) {
			return "", fmt.Errorf("truncated \\%c escape", b[i+1])
		}
		v, err := strconv.ParseUint(string(b[i+2:i+2+n]), 16, 32)
		if err != nil || v > 0x10ffff {
			return "", fmt.Errorf("invalid \\%c escape %q", b[i+1], b[i+2:i+2+n])
		}
		sb.WriteRune(rune(v))
		i += 1 + n
	}
	return sb.String(), nil
}
