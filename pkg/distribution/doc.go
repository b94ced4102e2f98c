// Package distribution resolves, writes and deletes manifests addressed by
// repository name and reference, where a reference is either a tag or a digest.
//
// Manifests live in a kvstore.Backend under two kinds of keys:
//
//	manifest::<name>::<reference>        serialized manifest, reference is a tag or a digest
//	manifest::<name>::<digest>::alias    set of tags currently pointing at <digest>
//
// Deleting by digest removes the content everywhere it is named: the digest key,
// every aliasing tag key and the alias set. Deleting by tag only unnames it, the
// content and its sibling tags stay resolvable.
//
// # Concurrency
//
// Every backend command is atomic on its own, but the multi step cascades are not
// wrapped in a transaction: last writer wins, there is no isolation across calls.
// A delete by tag racing a delete by digest of the same manifest may transiently
// leave a dangling alias or count a key twice.
package distribution
