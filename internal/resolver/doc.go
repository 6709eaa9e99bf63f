// Package resolver maps OCR-mangled or paraphrased titles to their canonical
// form by searching Wikipedia and keeping the closest fuzzy match, minus any
// trailing parenthetical such as "(2021 film)".
package resolver
