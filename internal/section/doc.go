// Package section isolates the "Item 1A. Risk Factors" section of an
// annual-report filing.
//
// The section is the span strictly between the first start marker
// ("Item 1A. Risk Factors") and the nearest following stop marker
// ("Item 1B. Unresolved Staff Comments"). Matching is case-insensitive and
// crosses line breaks. A filing without both markers yields an empty
// section; that is a reported outcome rather than an error.
package section
