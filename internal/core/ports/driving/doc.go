// Package driving defines the inbound ports of the sync core: the
// interfaces the embedding application calls to trigger passes and to
// read or mutate notification state.
package driving
