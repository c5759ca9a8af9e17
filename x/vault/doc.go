/*
Package vault implements a custodial time-lock vault.

A vault holds funds on behalf of its owner until an unlock time. A backup
identity, chosen when the vault is created, can arm a delayed recovery and
withdraw the funds once the recovery delay has passed. Each withdrawal pays
out the full vault balance minus a fixed fee.

Funds are kept in a custody account whose address is derived from the vault
record. Nobody holds a key for that address; only this package can
authorize transfers out of it.
*/
package vault
