// Package registry models the external membership Registry (spec §4.7):
// a strongly-consistent path namespace used solely for join-time presence
// checks. Registry is "modelled abstractly" per spec §1 — MemRegistry is
// the in-memory test double, ZKRegistry the production Zookeeper-backed
// collaborator, grounded on
// original_source/ex03/client/src/cluster/zookeeper_connector.py.
package registry

// Registry is the external collaborator's contract: presence checks and
// one-shot path creation.
type Registry interface {
	Exists(path string) bool
	Create(path string) error
}
