// Package storage persists the send record: the date of the last roster
// announcement that was successfully delivered.
//
// The record is the bot's only durable state. It is read before each gate
// check and overwritten (never merged) after a confirmed delivery.
package storage
