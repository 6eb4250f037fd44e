package validate

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formguard/pkg/messages"
)

const (
	nationalIDLength = 11
	taxIDLength      = 10
	ibanLength       = 26
	ibanCountry      = "TR"
	phoneLength      = 10
)

func current(s string) messages.Params {
	return messages.Params{"current": len(s)}
}

func nationalID(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	if len(d) != nationalIDLength {
		return Fail(messages.NationalIDLength, current(d))
	}
	if d[0] == '0' {
		return Fail(messages.NationalIDFirstZero, nil)
	}
	if allSame(d) {
		return Fail(messages.NationalIDChecksum, nil)
	}

	var n [nationalIDLength]int
	for i := range n {
		n[i] = int(d[i] - '0')
	}
	odd := n[0] + n[2] + n[4] + n[6] + n[8]
	even := n[1] + n[3] + n[5] + n[7]
	if n[9] != mod10(odd*7-even) {
		return Fail(messages.NationalIDChecksum, nil)
	}
	sum := 0
	for _, v := range n[:10] {
		sum += v
	}
	if n[10] != sum%10 {
		return Fail(messages.NationalIDChecksum, nil)
	}
	return OK()
}

func taxID(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	if len(d) != taxIDLength {
		return Fail(messages.TaxIDLength, current(d))
	}

	sum := 0
	for i := 0; i < 9; i++ {
		tmp := (int(d[i]-'0') + (9 - i)) % 10
		bit := (tmp * (1 << (9 - i))) % 9
		if tmp != 0 && bit == 0 {
			bit = 9
		}
		sum += bit
	}
	check := 0
	if sum%10 != 0 {
		check = 10 - sum%10
	}
	if int(d[9]-'0') != check {
		return Fail(messages.TaxIDChecksum, nil)
	}
	return OK()
}

// taxOrNationalID accepts either identifier and dispatches on length.
func taxOrNationalID(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	switch len(d) {
	case taxIDLength:
		return taxID(d)
	case nationalIDLength:
		return nationalID(d)
	default:
		return Fail(messages.TaxOrNationalIDLength, current(d))
	}
}

var ibanMod = big.NewInt(97)

func iban(value string) Outcome {
	if value == "" {
		return OK()
	}
	s := compactUpper(value)
	if !strings.HasPrefix(s, ibanCountry) {
		return Fail(messages.IBANPrefix, nil)
	}
	if len(s) != ibanLength {
		return Fail(messages.IBANLength, current(s))
	}

	rearranged := s[4:] + s[:4]
	var numeric strings.Builder
	numeric.Grow(len(rearranged) * 2)
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			numeric.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			numeric.WriteString(strconv.Itoa(int(c) - 55))
		default:
			return Fail(messages.IBAN, nil)
		}
	}

	n, ok := new(big.Int).SetString(numeric.String(), 10)
	if !ok {
		return Fail(messages.IBAN, nil)
	}
	if new(big.Int).Mod(n, ibanMod).Int64() != 1 {
		return Fail(messages.IBANChecksum, nil)
	}
	return OK()
}

func compactUpper(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '-':
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func creditCard(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	if len(d) < 13 || len(d) > 19 {
		return Fail(messages.CreditCardLength, current(d))
	}
	if !Luhn(d) {
		return Fail(messages.CreditCardChecksum, nil)
	}
	return OK()
}

// Luhn reports whether a digit string passes the Luhn check. Non-digit
// characters are ignored.
func Luhn(value string) bool {
	d := digitsOnly(value)
	if d == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		v := int(d[i] - '0')
		if double {
			v *= 2
			if v > 9 {
				v -= 9
			}
		}
		sum += v
		double = !double
	}
	return sum%10 == 0
}

func phone(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	if len(d) > phoneLength && strings.HasPrefix(d, "90") {
		d = d[2:]
	}
	d = strings.TrimPrefix(d, "0")
	if len(d) != phoneLength {
		return Fail(messages.PhoneLength, current(d))
	}
	if d[0] != '5' {
		return Fail(messages.PhonePrefix, nil)
	}
	return OK()
}

var platePattern = regexp.MustCompile(`^(\d{2})([A-Z]{1,3})(\d{2,4})$`)

func plate(value string) Outcome {
	if value == "" {
		return OK()
	}
	s := compactUpper(value)
	if len(s) < 5 || len(s) > 8 {
		return Fail(messages.Plate, nil)
	}
	m := platePattern.FindStringSubmatch(s)
	if m == nil {
		return Fail(messages.Plate, nil)
	}
	province, _ := strconv.Atoi(m[1])
	if province < 1 || province > 81 {
		return Fail(messages.PlateProvince, nil)
	}
	return OK()
}
