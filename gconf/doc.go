/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration of an extension.

Each extension keeps a single configuration object. It is loaded from the
genesis file ("conf" section, keyed by the extension name) on chain
initialization and stored in the state, so every node reads the same values.
*/
package gconf
