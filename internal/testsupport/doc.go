// Package testsupport provides shared fixtures for package tests: a config
// builder with placeholder credentials and a single fake upstream server that
// answers for OCR, the LLM, Wikipedia, TMDB, and Google Books.
package testsupport
