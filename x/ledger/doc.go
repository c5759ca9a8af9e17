/*
Package ledger keeps the balances of a single fungible token.

Every address owns at most one wallet. Funds are moved between wallets with
Transfer, which requires the source address to be authorized by the
request context. New funds can only be created by Mint, which is used by
the genesis initializer.
*/
package ledger
