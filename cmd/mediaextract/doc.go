// Command mediaextract runs the media extraction pipeline as an HTTP service
// (serve) or one-shot from the terminal (extract, resolve-title, lookup), plus
// configuration and health utilities.
package main
