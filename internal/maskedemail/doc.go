// Package maskedemail implements the round-trip text protocol for masked
// e-mail records.
//
// Records are serialized into one blank-line separated block per record:
//
//	alias@example.com (id: me-1)
//	  description: Shopping
//	  forDomain: shop.example
//	  url:
//
// Parse reads an edited copy of that text back, correlates each block to the
// original record by id with a single forward-moving cursor, and Diff reduces
// each block to the fields whose value actually changed. Blocks must keep
// their original relative order; a block that cannot be found at or after the
// cursor fails with a CorrelationError instead of being matched against the
// wrong record.
//
// Values are compared as opaque strings (or null for url) and are never
// escaped, so values containing newlines are not supported.
package maskedemail
