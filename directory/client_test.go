package directory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/x3dh"
)

var handshakeInfo = []byte("minimal-signal")

func newTestClient(t *testing.T) *Client {
	t.Helper()
	identity, err := curve25519.Generate()
	require.NoError(t, err)
	return NewClient(*identity)
}

func TestPublishBundleGeneratesUsableKeys(t *testing.T) {
	c := newTestClient(t)
	bundle, err := c.PublishBundle()
	require.NoError(t, err)

	assert.Equal(t, c.Identity.Pub, bundle.IdentityPub)
	assert.Len(t, bundle.OneTimePrekeysPub, x3dh.DefaultOneTimePrekeyCount)
	assert.NoError(t, x3dh.VerifyBundle(x3dh.FetchedBundle{
		IdentityPub:      bundle.IdentityPub,
		SignedPrekeyPub:  bundle.SignedPrekeyPub,
		SignedPrekeySig:  bundle.SignedPrekeySig,
		OneTimePrekeyPub: bundle.OneTimePrekeysPub[0],
	}))
}

func TestPublishBundleRotatesSignedPrekeyButAcceptsBoth(t *testing.T) {
	c := newTestClient(t)
	first, err := c.PublishBundle()
	require.NoError(t, err)

	second, err := c.PublishBundle()
	require.NoError(t, err)
	assert.NotEqual(t, first.SignedPrekeyPub, second.SignedPrekeyPub)

	_, err = c.resolveSignedPrekey(first.SignedPrekeyPub)
	assert.NoError(t, err, "the immediately previous signed prekey must still resolve")

	_, err = c.resolveSignedPrekey(second.SignedPrekeyPub)
	assert.NoError(t, err)
}

func TestResolveSignedPrekeyRejectsUnknown(t *testing.T) {
	c := newTestClient(t)
	_, err := c.PublishBundle()
	require.NoError(t, err)

	unknown, err := curve25519.Generate()
	require.NoError(t, err)

	_, err = c.resolveSignedPrekey(unknown.Pub)
	assert.ErrorIs(t, err, ErrUnknownSignedPrekey)
}

func TestTakeOneTimePrekeyConsumesOnFirstUse(t *testing.T) {
	c := newTestClient(t)
	bundle, err := c.PublishBundle()
	require.NoError(t, err)

	otp := bundle.OneTimePrekeysPub[0]
	_, err = c.takeOneTimePrekey(otp)
	require.NoError(t, err)

	_, err = c.takeOneTimePrekey(otp)
	assert.ErrorIs(t, err, ErrUnknownOneTimePrekey)
}

// TestEndToEndSessionEstablishmentAndMessaging exercises BeginSession and
// AcceptSession together with a directory on each side, mirroring how the
// relay-mediated client actually drives this package.
func TestEndToEndSessionEstablishmentAndMessaging(t *testing.T) {
	alice := newTestClient(t)
	bob := newTestClient(t)

	bobBundle, err := bob.PublishBundle()
	require.NoError(t, err)
	fetched := x3dh.FetchedBundle{
		IdentityPub:      bobBundle.IdentityPub,
		SignedPrekeyPub:  bobBundle.SignedPrekeyPub,
		SignedPrekeySig:  bobBundle.SignedPrekeySig,
		OneTimePrekeyPub: bobBundle.OneTimePrekeysPub[0],
	}

	initialMsg, session, err := alice.BeginSession(fetched, handshakeInfo, []byte("hi bob"))
	require.NoError(t, err)

	sid := uuid.New()
	alice.RegisterSession(sid, session)

	plaintext, err := bob.AcceptSession(sid, *initialMsg, handshakeInfo)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi bob"), plaintext)

	headerBytes, payload, err := bob.Encrypt(sid, []byte("hi alice"))
	require.NoError(t, err)
	reply, err := alice.Decrypt(sid, headerBytes, payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi alice"), reply)
}

func TestAcceptSessionRejectsUnknownOneTimePrekey(t *testing.T) {
	alice := newTestClient(t)
	bob := newTestClient(t)

	bobBundle, err := bob.PublishBundle()
	require.NoError(t, err)
	fetched := x3dh.FetchedBundle{
		IdentityPub:      bobBundle.IdentityPub,
		SignedPrekeyPub:  bobBundle.SignedPrekeyPub,
		SignedPrekeySig:  bobBundle.SignedPrekeySig,
		OneTimePrekeyPub: bobBundle.OneTimePrekeysPub[0],
	}

	initialMsg, _, err := alice.BeginSession(fetched, handshakeInfo, []byte("hi bob"))
	require.NoError(t, err)

	// Bob did publish this one-time prekey: consume it once here to
	// simulate an earlier handshake having already used it.
	_, err = bob.takeOneTimePrekey(initialMsg.OneTimePrekeyPub)
	require.NoError(t, err)

	_, err = bob.AcceptSession(uuid.New(), *initialMsg, handshakeInfo)
	assert.ErrorIs(t, err, ErrUnknownOneTimePrekey)
}

func TestEncryptDecryptUnknownSession(t *testing.T) {
	c := newTestClient(t)
	_, _, err := c.Encrypt(uuid.New(), []byte("msg"))
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = c.Decrypt(uuid.New(), []byte("h"), []byte("p"))
	assert.ErrorIs(t, err, ErrUnknownSession)
}
