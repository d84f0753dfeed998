package contact

import (
	"strings"
)

// Input column names. Matching is case-sensitive.
const (
	ColumnCompany  = "Company Name"
	ColumnIndustry = "Industry Focus"
	ColumnName     = "Contact Name"
	ColumnPosition = "Position / Role"
	ColumnNotes    = "Notes"

	// ColumnEmail is the generated text column in the output file.
	ColumnEmail = "Email Content"
)

// Record is one row of the contact list. Only Name is required.
type Record struct {
	Company  string
	Industry string
	Name     string
	Position string
	Notes    string
}

// HasName reports whether the record carries a usable contact name.
func (r Record) HasName() bool {
	return strings.TrimSpace(r.Name) != ""
}

// Result is the generated email kept for one contact.
type Result struct {
	Company string
	Name    string
	Email   string
}

// InputHeader returns the recognized input columns in canonical order.
func InputHeader() []string {
	return []string{
		ColumnCompany,
		ColumnIndustry,
		ColumnName,
		ColumnPosition,
		ColumnNotes,
	}
}

// OutputHeader returns the stable CSV header for Result.
func OutputHeader() []string {
	return []string{
		ColumnCompany,
		ColumnName,
		ColumnEmail,
	}
}
