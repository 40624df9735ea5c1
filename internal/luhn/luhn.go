// Package luhn validates credit card numbers.
package luhn

// Validate reports whether s passes the Luhn checksum. Spaces and dashes
// between digits are ignored; any other non-digit fails validation.
func Validate(s string) bool {
	var digits []int
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c == ' ' || c == '-':
		default:
			return false
		}
	}
	if len(digits) == 0 {
		return false
	}

	var sum int
	alternate := false
	for i := len(digits) - 1; i >= 0; i-- {
		digit := digits[i]

		if alternate {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}
