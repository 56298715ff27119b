// Package contacts finds contact details in normalized document text and
// attributes a primary email to a person name and a company name.
package contacts

import "strings"

// Record is a single output row. The run loop stamps every record with its
// sequence number and the file it came from, as a base name and as a path
// relative to the input root. Each record kind keeps what it reports.
type Record interface {
	Stamp(id int, name, relPath string)
}

// ContactRecord is the result of the heuristic extraction of one document.
type ContactRecord struct {
	ID           int      `json:"id" yaml:"id"`
	FileName     string   `json:"file_name" yaml:"file_name"`
	FileEmails   []string `json:"file_emails" yaml:"file_emails"`
	FilePhones   []string `json:"file_phones" yaml:"file_phones"`
	FileLandline []string `json:"file_landline" yaml:"file_landline"`
	CompanyName  string   `json:"company_name" yaml:"company_name"`
	PersonName   string   `json:"person_name" yaml:"person_name"`
	PrimaryEmail string   `json:"primary_email" yaml:"primary_email"`
}

// Stamp sets the record id and the base file name.
func (r *ContactRecord) Stamp(id int, name, _ string) {
	r.ID = id
	r.FileName = name
}

// EntityRecord is the result of the entity-tagger extraction of one document.
type EntityRecord struct {
	File      string          `json:"file" yaml:"file"`
	Extracted EntityExtracted `json:"extracted" yaml:"extracted"`
}

// EntityExtracted holds the matched sets of an EntityRecord.
type EntityExtracted struct {
	Emails               []string `json:"emails" yaml:"emails"`
	Phones               []string `json:"phones" yaml:"phones"`
	PossibleAddressParts []string `json:"possible_address_parts" yaml:"possible_address_parts"`
}

// Stamp sets the relative file path. Entity records carry no id.
func (r *EntityRecord) Stamp(_ int, _, relPath string) {
	r.File = relPath
}

// Extract runs the heuristic extraction over text, which must already be
// normalized. It returns nil when the text holds no email, mobile or
// landline. The primary email is the first of the sorted email set. A record
// holding only numbers is the one case where the primary email is not a
// member of that set: it is empty and no attribution is attempted.
func Extract(text string, attr *Attributor) *ContactRecord {
	emails := FindEmails(text)
	mobiles := FindMobiles(text)
	landlines := FindLandlines(text)

	if len(emails) == 0 && len(mobiles) == 0 && len(landlines) == 0 {
		return nil
	}

	rec := &ContactRecord{
		FileEmails:   emails,
		FilePhones:   mobiles,
		FileLandline: landlines,
	}
	if len(emails) > 0 {
		lines := strings.Split(text, "\n")
		rec.PrimaryEmail = emails[0]
		rec.PersonName = attr.PersonName(rec.PrimaryEmail, lines)
		rec.CompanyName = attr.CompanyName(rec.PrimaryEmail, lines)
	}
	return rec
}
