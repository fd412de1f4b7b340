package models

import "strings"

// Business types that carry document requirements
const (
	BusinessTypeHome       = "home"
	BusinessTypeCommercial = "commercial"
)

// RecognizedDocTypes are the document kinds the docs sub-flow accepts.
// Stored filenames are prefixed with one of these, so matching must try
// the multi-word types before shorter ones would get a chance to shadow
// them.
var RecognizedDocTypes = []string{
	"CR",
	"Trade_License",
	"Computer_Card",
	"IBAN_Stamped",
	"QID",
	"Home_License",
}

// IsRecognizedDocType reports whether docType is one of the accepted kinds
func IsRecognizedDocType(docType string) bool {
	for _, dt := range RecognizedDocTypes {
		if dt == docType {
			return true
		}
	}
	return false
}

// DocTypeOf extracts the document type prefix from a stored filename,
// empty string when the file does not belong to a recognized type.
func DocTypeOf(filename string) string {
	for _, dt := range RecognizedDocTypes {
		if strings.HasPrefix(filename, dt+"_") {
			return dt
		}
	}
	return ""
}

// RequiredDocTypes returns the document kinds a business type must provide
// before the docs sub-flow can be submitted.
func RequiredDocTypes(businessType string) []string {
	switch businessType {
	case BusinessTypeHome:
		return []string{"Home_License", "IBAN_Stamped", "QID"}
	case BusinessTypeCommercial:
		return []string{"CR", "Trade_License", "Computer_Card", "IBAN_Stamped", "QID"}
	default:
		return nil
	}
}
