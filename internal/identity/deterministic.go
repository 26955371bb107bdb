package identity

import (
	"encoding/binary"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// anonymousKey is the synthetic identity used when a caller supplies no
// identifier. Keeping it fixed means rollout decisions stay deterministic
// run-to-run even for anonymous callers.
const anonymousKey = "__anonymous__"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-domain collisions
// (prefix by subsystem).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// RolloutBucket maps a caller identity onto a stable bucket in [0, 100).
// The same identity always lands in the same bucket; an empty identity is
// folded onto a fixed synthetic key so it still resolves deterministically.
func RolloutBucket(callerID string) int {
	key := strings.TrimSpace(callerID)
	if key == "" {
		key = anonymousKey
	}
	uid := UUID("go-markup:rollout:" + strings.ToLower(key))
	return int(binary.BigEndian.Uint32(uid[0:4]) % 100)
}
