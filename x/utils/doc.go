/*
Package utils provides decorators wrapping every transaction: panic
recovery, savepoints that make a transaction atomic, logging, action tags
and prometheus metrics.
*/
package utils
