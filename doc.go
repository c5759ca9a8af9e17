/*
Package timevault defines the interfaces used throughout the vault
application, such as: storage, transactions, handlers, addressing and
context. Look into this package to get a brief overview of the building
blocks that the extensions in x/ are assembled from.

Identities are Addresses: a one way digest of a Condition. Anything that can
authorize an action is described by a Condition, be it a public key (see
x/sigs) or a module owned account without any private key (see x/vault).
*/
package timevault
