// Package cache provides an LRU cache for immutable blob blocks.
//
// LRUBlockCache bounds its own size in bytes and, when given a
// resource.Controller, also charges every cached block against the shared
// memory budget. A block the budget cannot admit is simply not cached.
package cache
