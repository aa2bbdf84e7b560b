// Package redact masks contact details in previews and listings.
//
// Every mask is idempotent: masking an already masked value returns it
// unchanged. Empty input always yields "".
package redact

import (
	"strings"

	"github.com/easyprospect/api/pkg/models"
)

const (
	emailMask = "***"
	phoneMask = "***-****"
	textMask  = "***"

	emailKeep = 2
	phoneKeep = 6
	textKeep  = 3
)

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Email keeps the first two characters of the local part and the domain.
// Values without "@" are returned unchanged.
func Email(s string) string {
	if s == "" {
		return ""
	}
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	local, domain := s[:at], s[at+1:]
	if strings.HasSuffix(local, emailMask) {
		return s
	}
	return prefix(local, emailKeep) + emailMask + "@" + domain
}

// Phone keeps the first six characters
func Phone(s string) string {
	if s == "" || strings.HasSuffix(s, phoneMask) {
		return s
	}
	return prefix(s, phoneKeep) + phoneMask
}

// Text keeps the first three characters
func Text(s string) string {
	if s == "" || strings.HasSuffix(s, textMask) {
		return s
	}
	return prefix(s, textKeep) + textMask
}

// Company returns a copy of c with its contact details masked and the
// street address removed.
func Company(c models.Company) models.Company {
	c.Email = Email(c.Email)
	c.Phone = Phone(c.Phone)
	c.WhatsApp = Phone(c.WhatsApp)
	c.TaxID = Text(c.TaxID)
	c.Website = Text(c.Website)
	c.LinkedIn = Text(c.LinkedIn)
	c.Instagram = Text(c.Instagram)
	c.ResponsibleName = Text(c.ResponsibleName)
	c.Address = ""
	return c
}

// Companies masks every record in place and returns the slice
func Companies(cs []models.Company) []models.Company {
	for i := range cs {
		cs[i] = Company(cs[i])
	}
	return cs
}
