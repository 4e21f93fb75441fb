// Package api implements the shop REST routes for users, products, orders
// and payments on top of an in-memory store.
package api
