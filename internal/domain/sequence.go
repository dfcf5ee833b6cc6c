package domain

import (
	"fmt"
	"time"
)

// DocumentType describes how a family of documents is numbered.
type DocumentType struct {
	Prefix string
	Width  int
}

var (
	DocStockMovement    = DocumentType{Prefix: "MOV", Width: 4}
	DocInvoice          = DocumentType{Prefix: "INV", Width: 3}
	DocAccountingRecord = DocumentType{Prefix: "ACR", Width: 4}
	DocJob              = DocumentType{Prefix: "JOB", Width: 4}
)

// Format renders ordinal as PREFIX-YEAR-NNNN, zero padded to Width.
// Ordinals wider than Width are printed in full.
func (d DocumentType) Format(year int, ordinal int64) string {
	return FormatSequence(d, year, ordinal)
}

// FormatSequence renders a document number.
func FormatSequence(doc DocumentType, year int, ordinal int64) string {
	return fmt.Sprintf("%s-%d-%0*d", doc.Prefix, year, doc.Width, ordinal)
}

// SequenceYear is the numbering scope of t.
func SequenceYear(t time.Time) int {
	return t.UTC().Year()
}
