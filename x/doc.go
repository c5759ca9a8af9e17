/*
Package x contains the extensions of the application.

The root of this package holds the authentication abstraction shared by all
extensions: an Authenticator reveals which conditions (signatures, derived
custody permissions) are fulfilled for the current request. Handlers receive
an Authenticator in their constructor, so that the source of permissions can
be swapped without touching the business logic.
*/
package x
