// Package vault gives the card actions access to a Markdown vault on disk:
// note enumeration, binary asset writes, frontmatter read-modify-write,
// host settings and link formatting.
//
// All paths crossing this package's API are vault-relative and
// slash-separated ("cards/My Card.md").
package vault
