package distribution

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/kvstore"
	"github.com/wuxler/rregistry/pkg/ocispec/manifest"
	"github.com/wuxler/rregistry/pkg/ocispec/name"
	"github.com/wuxler/rregistry/pkg/xlog"
)

// MaxAliasDepth caps the number of alias hops Resolve follows. A consistent store
// needs a single hop (digest -> tag), the cap only guards against corrupted alias
// graphs.
const MaxAliasDepth = 8

// NewManifestStore returns a ManifestStore.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{}
}

// ManifestStore implements manifest lookups, writes and cascading deletes on top
// of a kvstore.Backend given on every call. It holds no state of its own.
//
// Requests whose repository name is invalid, or whose reference is neither a tag
// nor a digest, are answered as not found without touching the backend.
type ManifestStore struct{}

// Exists reports whether a manifest is stored under the reference, or whether the
// reference is a digest with an alias set.
//
// An alias set counts as evidence of existence even when all of its members are
// stale, Resolve is stricter and checks that the alias it follows is live.
func (s *ManifestStore) Exists(ctx context.Context, b kvstore.Backend, repo string, reference string) (bool, error) {
	if !name.IsRequestValid(repo, reference) {
		return false, nil
	}
	ok, err := b.Exists(ctx, kvstore.ManifestKey(repo, reference))
	if err != nil || ok {
		return ok, err
	}
	return b.Exists(ctx, kvstore.AliasKey(repo, reference))
}

// Resolve returns the manifest addressed by the reference. When nothing is stored
// under the reference itself it is looked up as a digest and the first live tag
// of its alias set, in lexical order, is followed instead.
func (s *ManifestStore) Resolve(ctx context.Context, b kvstore.Backend, repo string, reference string) (manifest.Manifest, error) {
	if !name.IsRequestValid(repo, reference) {
		return manifest.Manifest{}, invalidRequest(repo, reference)
	}
	logger := xlog.C(ctx).With("repository", repo, "reference", reference)

	current := reference
	for hops := 0; ; hops++ {
		data, err := b.Get(ctx, kvstore.ManifestKey(repo, current))
		if err != nil {
			return manifest.Manifest{}, err
		}
		if data != nil {
			m, err := manifest.Decode(data)
			if err != nil {
				return manifest.Manifest{}, fmt.Errorf("manifest %s:%s: %w", repo, current, err)
			}
			return m, nil
		}
		if hops == MaxAliasDepth {
			logger.Warn("alias chain too deep, the alias index may be corrupted", "hops", hops)
			return manifest.Manifest{}, ErrAliasDepthExceeded
		}
		next, err := s.liveAlias(ctx, b, repo, current)
		if err != nil {
			return manifest.Manifest{}, err
		}
		logger.Debug("following alias", "from", current, "to", next)
		current = next
	}
}

// liveAlias picks one tag of the alias set of dgst that still exists.
func (s *ManifestStore) liveAlias(ctx context.Context, b kvstore.Backend, repo string, dgst string) (string, error) {
	members, err := b.SetMembers(ctx, kvstore.AliasKey(repo, dgst))
	if err != nil {
		if errors.Is(err, errdefs.ErrConflict) {
			return "", errors.Join(ErrManifestUnknown, err)
		}
		return "", err
	}
	slices.Sort(members)
	for _, tag := range members {
		ok, err := s.Exists(ctx, b, repo, tag)
		if err != nil {
			return "", err
		}
		if ok {
			return tag, nil
		}
	}
	return "", ErrManifestUnknown
}

// Delete removes the manifest addressed by the reference and returns the number
// of keys removed, 0 meaning nothing existed.
//
//   - Deleting by digest removes the digest key, every tag aliasing the digest and
//     the alias set itself, the count includes all of them.
//   - Deleting by tag removes the tag key and its membership in the alias set of
//     the manifest digest, sibling tags are left untouched. The count is the
//     number of alias memberships removed.
//   - When nothing is stored under the reference itself, the tags found in its
//     alias set and the alias set are removed.
//
// On error the count reflects the keys removed before the failure.
func (s *ManifestStore) Delete(ctx context.Context, b kvstore.Backend, repo string, reference string) (int64, error) {
	if !name.IsRequestValid(repo, reference) {
		return 0, nil
	}
	logger := xlog.C(ctx).With("repository", repo, "reference", reference)

	data, err := b.GetAndDelete(ctx, kvstore.ManifestKey(repo, reference))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return s.deleteAliased(ctx, b, repo, reference)
	}

	if name.IsDigest(reference) {
		n, err := s.deleteAliased(ctx, b, repo, reference)
		logger.Debug("deleted manifest by digest", "aliases_removed", n)
		return 1 + n, err
	}

	m, err := manifest.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("manifest %s:%s: %w", repo, reference, err)
	}
	removed, err := b.SetRemove(ctx, kvstore.AliasKey(repo, m.Digest().String()), reference)
	if err != nil {
		return 0, err
	}
	logger.Debug("untagged manifest", "digest", m.Digest(), "alias_removed", removed)
	return removed, nil
}

// deleteAliased removes every tag key listed in the alias set of dgst, then the
// alias set.
func (s *ManifestStore) deleteAliased(ctx context.Context, b kvstore.Backend, repo string, dgst string) (int64, error) {
	aliasKey := kvstore.AliasKey(repo, dgst)
	members, err := b.SetMembers(ctx, aliasKey)
	if err != nil {
		if errors.Is(err, errdefs.ErrConflict) {
			return 0, nil
		}
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	var removed int64
	for _, tag := range members {
		n, err := b.Delete(ctx, kvstore.ManifestKey(repo, tag))
		if err != nil {
			return removed, err
		}
		removed += n
	}
	n, err := b.Delete(ctx, aliasKey)
	if err != nil {
		return removed, err
	}
	return removed + n, nil
}

// Put stores the manifest under the reference and returns its digest. When the
// reference is a tag it is added to the alias set of the manifest digest; a tag
// moved away from another digest leaves that digest's alias set first.
//
// A digest reference must equal the manifest digest.
func (s *ManifestStore) Put(ctx context.Context, b kvstore.Backend, repo string, reference string, m manifest.Manifest) (digest.Digest, error) {
	if err := name.ValidateRepositoryName(repo); err != nil {
		return "", errdefs.NewE(errdefs.ErrInvalidParameter, err)
	}
	if err := name.ValidateReference(reference); err != nil {
		return "", errdefs.NewE(errdefs.ErrInvalidParameter, err)
	}
	dgst := m.Digest()
	if !name.IsDigestValid(dgst.String()) {
		return "", errdefs.NewE(errdefs.ErrInvalidParameter,
			manifest.NewErrInvalidField("config.digest %q is not a valid digest", dgst))
	}
	isTag := name.IsTag(reference)
	if !isTag && reference != dgst.String() {
		return "", errdefs.Newf(errdefs.ErrInvalidParameter,
			"digest reference %s does not match manifest digest %s", reference, dgst)
	}

	data, err := manifest.Encode(m)
	if err != nil {
		return "", err
	}
	key := kvstore.ManifestKey(repo, reference)
	if isTag {
		if err := s.untagPrevious(ctx, b, repo, reference, dgst); err != nil {
			return "", err
		}
	}
	if err := b.Set(ctx, key, data); err != nil {
		return "", err
	}
	if isTag {
		if err := b.SetAdd(ctx, kvstore.AliasKey(repo, dgst.String()), reference); err != nil {
			return "", err
		}
	}
	xlog.C(ctx).Debug("stored manifest", "repository", repo, "reference", reference, "digest", dgst)
	return dgst, nil
}

// untagPrevious drops tag from the alias set of the manifest it pointed at before,
// if that manifest has a different digest.
func (s *ManifestStore) untagPrevious(ctx context.Context, b kvstore.Backend, repo string, tag string, dgst digest.Digest) error {
	previous, err := b.Get(ctx, kvstore.ManifestKey(repo, tag))
	if err != nil || previous == nil {
		return err
	}
	old, err := manifest.Decode(previous)
	if err != nil {
		xlog.C(ctx).Warn("overwriting undecodable manifest", "repository", repo, "tag", tag, "error", err)
		return nil
	}
	if old.Digest() == dgst {
		return nil
	}
	_, err = b.SetRemove(ctx, kvstore.AliasKey(repo, old.Digest().String()), tag)
	return err
}
