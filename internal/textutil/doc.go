// Package textutil provides the text helpers shared by the title resolver and
// the catalog clients.
//
// The primary use cases are:
//   - Folding and tokenizing titles so accents, case, and punctuation do not
//     affect comparison
//   - Fuzzy similarity ratios on a 0-100 scale (Ratio, TokenSortRatio,
//     TokenSetRatio, WeightedRatio) built on Levenshtein distance
//   - Stripping trailing parenthetical disambiguators such as "(2021 film)"
//   - Rendering catalog HTML descriptions as plain text
package textutil
