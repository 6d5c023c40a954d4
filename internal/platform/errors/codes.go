// Package errors provides structured error handling for the armory service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Hero creation errors
	CodeHeroInvalidName           Code = "HERO_INVALID_NAME"
	CodeHeroInvalidDescription    Code = "HERO_INVALID_DESCRIPTION"
	CodeHeroInvalidImageReference Code = "HERO_INVALID_IMAGE_REFERENCE"

	// Weapon slot errors
	CodeHeroSlotOccupied    Code = "HERO_SLOT_OCCUPIED"
	CodeHeroNothingEquipped Code = "HERO_NOTHING_EQUIPPED"

	// Capability errors
	CodeMintUnauthorized     Code = "MINT_UNAUTHORIZED"
	CodeGrantWrongPublisher  Code = "GRANT_WRONG_PUBLISHER"
	CodeGrantEmptyRecipient  Code = "GRANT_EMPTY_RECIPIENT"
	CodeCallerAddressMissing Code = "CALLER_ADDRESS_MISSING"

	// Filter/pagination errors
	CodeInvalidFilter    Code = "INVALID_FILTER"
	CodeInvalidPageToken Code = "INVALID_PAGE_TOKEN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes at the API edge.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeHeroInvalidName, CodeHeroInvalidDescription, CodeHeroInvalidImageReference,
		CodeGrantEmptyRecipient, CodeInvalidFilter, CodeInvalidPageToken:
		return http.StatusBadRequest
	case CodeHeroSlotOccupied, CodeHeroNothingEquipped:
		return http.StatusConflict
	case CodeMintUnauthorized, CodeGrantWrongPublisher:
		return http.StatusForbidden
	case CodeCallerAddressMissing:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
