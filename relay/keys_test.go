package relay

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// These cover the Redis key-naming helpers only: PutBundle/FetchBundle and
// PostMessage/GetMessage themselves need a live Redis instance and have no
// tests in this repository (see DESIGN.md).

func TestCoreAndOtpKeysAreDistinctPerIdentity(t *testing.T) {
	assert.NotEqual(t, coreKey("alice"), coreKey("bob"))
	assert.NotEqual(t, coreKey("alice"), otpKey("alice"))
}

func TestMessageAndPendingKeysAreDistinctPerSession(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	assert.NotEqual(t, messageKey(a), messageKey(b))
	assert.NotEqual(t, pendingKey("alice"), pendingKey("bob"))
}
