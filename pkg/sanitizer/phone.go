package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegions are tried in order for numbers written without a country
// code.
var DefaultRegions = []string{
	"US",
	"IL",
}

// NormalizePhone formats phone as E.164, or returns "" when it is not a
// possible number in any of DefaultRegions.
func NormalizePhone(phone string) string {
	return NormalizePhoneIn(phone, DefaultRegions...)
}

func NormalizePhoneIn(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsPossibleNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}
