// Package wikipedia wraps the MediaWiki search API (action=query&list=search)
// and returns ranked page titles. The title resolver uses it as the
// encyclopedic index for canonicalizing rough titles.
package wikipedia
