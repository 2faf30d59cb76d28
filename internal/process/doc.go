// Package process stops the browser tree a renderer launched.
package process
