// Package events writes event documents: creation and removal. The
// directory picks both up through its subscription; this package never
// touches the cache directly.
package events
