// Package driven defines the outbound ports of the sync core: the
// interfaces the core consumes for transport, storage and event
// reporting. Implementations live under internal/adapters/driven and
// internal/graphql.
package driven
