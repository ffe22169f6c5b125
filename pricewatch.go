// Package pricewatch watches product pages on e-commerce sites, extracts
// their prices, detects genuine price changes against a stored history and
// notifies about them.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package pricewatch
