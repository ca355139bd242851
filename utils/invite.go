package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewInviteCode generates a household invite code. Codes are random UUIDs
// stripped of dashes and truncated for easier manual entry; collisions are
// guarded by the unique index on households.invite_code.
func NewInviteCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
