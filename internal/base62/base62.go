// Package base62 converts between unsigned integers and short codes.
//
// The alphabet is ordered like ASCII, so for canonical codes (no leading
// zeros) comparing by length first and then bytewise gives numeric order.
package base62

import (
	"errors"
	"math"
)

const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(Alphabet))

var (
	ErrEmpty       = errors.New("base62: empty code")
	ErrInvalidChar = errors.New("base62: invalid character")
	ErrOverflow    = errors.New("base62: value overflows uint64")
)

// Encode converts a number to its base62 code.
func Encode(num uint64) string {
	if num == 0 {
		return Alphabet[:1]
	}

	var buf [11]byte // 62^11 > 2^64

	i := len(buf)
	for num > 0 {
		i--
		buf[i] = Alphabet[num%base]
		num /= base
	}

	return string(buf[i:])
}

// Decode converts a base62 code back to a number.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, ErrEmpty
	}

	var num uint64

	for i := 0; i < len(code); i++ {
		digit := indexOf(code[i])
		if digit < 0 {
			return 0, ErrInvalidChar
		}

		if num > (math.MaxUint64-uint64(digit))/base {
			return 0, ErrOverflow
		}

		num = num*base + uint64(digit)
	}

	return num, nil
}

// Next returns the code that follows code in allocation order.
func Next(code string) (string, error) {
	num, err := Decode(code)
	if err != nil {
		return "", err
	}

	if num == math.MaxUint64 {
		return "", ErrOverflow
	}

	return Encode(num + 1), nil
}

// Valid reports whether every byte of code belongs to the alphabet.
func Valid(code string) bool {
	if code == "" {
		return false
	}

	for i := 0; i < len(code); i++ {
		if indexOf(code[i]) < 0 {
			return false
		}
	}

	return true
}

func indexOf(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 36
	default:
		return -1
	}
}
