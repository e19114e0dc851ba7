package ratchet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimal-signal/crypto/curve25519"
)

func testSeeds() Seeds {
	var seeds Seeds
	for i := range seeds {
		for j := range seeds[i] {
			seeds[i][j] = byte(i*32 + j)
		}
	}
	return seeds
}

func newTestPair(t *testing.T) *curve25519.Pair {
	t.Helper()
	pair, err := curve25519.Generate()
	require.NoError(t, err)
	return pair
}

// newSessionPair builds an initiator/responder pair sharing the same seeds
// and AD the way x3dh.SendInitialMessage/ReceiveInitialMessage would.
func newSessionPair(t *testing.T) (initiator, responder *Session) {
	t.Helper()
	seeds := testSeeds()
	ad := []byte("associated data")
	info := []byte("minimal-signal")

	responderKeys := newTestPair(t)

	initiatorSession, err := InitInitiator(ad, info, nil, responderKeys.Pub, seeds)
	require.NoError(t, err)

	responderSession := InitResponder(ad, info, *responderKeys, seeds)
	return initiatorSession, responderSession
}

func TestFirstMessageEstablishesResponderSendingChain(t *testing.T) {
	initiator, responder := newSessionPair(t)

	headerBytes, payload, err := initiator.Encrypt([]byte("hello responder"))
	require.NoError(t, err)

	assert.False(t, responder.Ready())
	plaintext, err := responder.Decrypt(headerBytes, payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello responder"), plaintext)
	assert.True(t, responder.Ready())
}

func TestBidirectionalExchange(t *testing.T) {
	initiator, responder := newSessionPair(t)

	h1, p1, err := initiator.Encrypt([]byte("ping"))
	require.NoError(t, err)
	pt1, err := responder.Decrypt(h1, p1)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), pt1)

	h2, p2, err := responder.Encrypt([]byte("pong"))
	require.NoError(t, err)
	pt2, err := initiator.Decrypt(h2, p2)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), pt2)

	h3, p3, err := initiator.Encrypt([]byte("ping again, next epoch"))
	require.NoError(t, err)
	pt3, err := responder.Decrypt(h3, p3)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping again, next epoch"), pt3)
}

func TestOutOfOrderDeliveryWithinSkipBound(t *testing.T) {
	initiator, responder := newSessionPair(t)

	// Establish the responder's sending chain first.
	h0, p0, err := initiator.Encrypt([]byte("prime"))
	require.NoError(t, err)
	_, err = responder.Decrypt(h0, p0)
	require.NoError(t, err)

	type msg struct {
		header, payload []byte
		plaintext       []byte
	}
	var sent []msg
	for i := 0; i < 3; i++ {
		pt := []byte{byte('a' + i)}
		h, p, err := initiator.Encrypt(pt)
		require.NoError(t, err)
		sent = append(sent, msg{h, p, pt})
	}

	// Deliver out of order: 2, 0, 1.
	pt, err := responder.Decrypt(sent[2].header, sent[2].payload)
	require.NoError(t, err)
	assert.Equal(t, sent[2].plaintext, pt)

	pt, err = responder.Decrypt(sent[0].header, sent[0].payload)
	require.NoError(t, err)
	assert.Equal(t, sent[0].plaintext, pt)

	pt, err = responder.Decrypt(sent[1].header, sent[1].payload)
	require.NoError(t, err)
	assert.Equal(t, sent[1].plaintext, pt)
}

func TestDecryptFailsWhenSkipBoundExceeded(t *testing.T) {
	initiator, responder := newSessionPair(t)

	h0, p0, err := initiator.Encrypt([]byte("prime"))
	require.NoError(t, err)
	_, err = responder.Decrypt(h0, p0)
	require.NoError(t, err)

	var last struct{ header, payload []byte }
	for i := 0; i < MaxSkip+2; i++ {
		h, p, err := initiator.Encrypt([]byte("filler"))
		require.NoError(t, err)
		last.header, last.payload = h, p
	}

	_, err = responder.Decrypt(last.header, last.payload)
	assert.ErrorIs(t, err, ErrTooManySkipped)
}

func TestDecryptRejectsTamperedPayload(t *testing.T) {
	initiator, responder := newSessionPair(t)

	headerBytes, payload, err := initiator.Encrypt([]byte("hello"))
	require.NoError(t, err)
	payload[0] ^= 0xff

	_, err = responder.Decrypt(headerBytes, payload)
	assert.Error(t, err)
}

func TestEncryptFailsBeforeResponderIsReady(t *testing.T) {
	_, responder := newSessionPair(t)
	_, _, err := responder.Encrypt([]byte("too early"))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestDHRatchetStepAdvancesAcrossEpochs(t *testing.T) {
	initiator, responder := newSessionPair(t)

	h0, p0, err := initiator.Encrypt([]byte("epoch 0"))
	require.NoError(t, err)
	_, err = responder.Decrypt(h0, p0)
	require.NoError(t, err)

	// Responder replies, advancing the DH ratchet into a new epoch.
	h1, p1, err := responder.Encrypt([]byte("epoch 1"))
	require.NoError(t, err)
	pt1, err := initiator.Decrypt(h1, p1)
	require.NoError(t, err)
	assert.Equal(t, []byte("epoch 1"), pt1)
	assert.NotEqual(t, initiator.RatchetPublic(), responder.RatchetPublic())

	// And again, back the other way.
	h2, p2, err := initiator.Encrypt([]byte("epoch 2"))
	require.NoError(t, err)
	pt2, err := responder.Decrypt(h2, p2)
	require.NoError(t, err)
	assert.Equal(t, []byte("epoch 2"), pt2)
}

func TestOutOfOrderAcrossEpochBoundary(t *testing.T) {
	initiator, responder := newSessionPair(t)

	h0, p0, err := initiator.Encrypt([]byte("prime"))
	require.NoError(t, err)
	_, err = responder.Decrypt(h0, p0)
	require.NoError(t, err)

	// Responder sends two messages in the epoch it just rotated into.
	hC, pC, err := responder.Encrypt([]byte("C"))
	require.NoError(t, err)
	hD, pD, err := responder.Encrypt([]byte("D"))
	require.NoError(t, err)

	// Initiator receives "D" first: this both rolls its own epoch over
	// and must skip-buffer "C" within the new chain.
	ptD, err := initiator.Decrypt(hD, pD)
	require.NoError(t, err)
	assert.Equal(t, []byte("D"), ptD)
	assert.NotEqual(t, [32]byte{}, initiator.RatchetPublic())

	// "C" then resolves out of the skipped-message buffer.
	ptC, err := initiator.Decrypt(hC, pC)
	require.NoError(t, err)
	assert.Equal(t, []byte("C"), ptC)
}
