package translate

import "fmt"

// The endpoint expects an integrity token derived from the request text: a
// rolling checksum over the UTF-8 bytes, folded through two shift schedules
// and xor-mixed with a fixed key pair.

const (
	tokenKeyA int64 = 406644
	tokenKeyB int64 = 3293161072
)

// Token computes the integrity token for one request body. The result is
// deterministic for a given text.
func Token(text string) string {
	a := tokenKeyA
	for _, b := range []byte(text) {
		a += int64(b)
		a = mangle(a, "+-a^+6")
	}
	a = mangle(a, "+-3^+b+-f")
	a ^= tokenKeyB
	if a < 0 {
		a = (a & 0x7fffffff) + 0x80000000
	}
	a %= 1_000_000
	return fmt.Sprintf("%d.%d", a, a^tokenKeyA)
}

// mangle applies a schedule of shift-and-fold steps encoded as triplets:
// combine op, shift direction, shift amount.
func mangle(a int64, schedule string) int64 {
	for i := 0; i+2 < len(schedule); i += 3 {
		c := schedule[i+2]
		var d int64
		if c >= 'a' {
			d = int64(c - 87)
		} else {
			d = int64(c - '0')
		}
		if schedule[i+1] == '+' {
			d = int64(uint32(a) >> uint(d))
		} else {
			d = a << uint(d)
		}
		if schedule[i] == '+' {
			a = (a + d) & 0xffffffff
		} else {
			a ^= d
		}
	}
	return a
}
