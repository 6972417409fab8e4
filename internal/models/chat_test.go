package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanonicalPairOrderIndependent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	ab := CanonicalPair(a, b)
	ba := CanonicalPair(b, a)

	require.Len(t, ab, 2)
	assert.Equal(t, ab, ba)
	assert.True(t, ab[0].Hex() < ab[1].Hex())
}

func TestPairKeyOrderIndependent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	key := PairKey(a, b)
	assert.Equal(t, key, PairKey(b, a))

	pair := CanonicalPair(a, b)
	assert.Equal(t, pair[0].Hex()+":"+pair[1].Hex(), key)
}

// One user must be able to hold chats with several peers: the pair keys of
// (a,b) and (a,c) share a member but never collide.
func TestPairKeyDistinctPerPeer(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	keys := map[string]bool{
		PairKey(a, b): true,
		PairKey(a, c): true,
		PairKey(b, c): true,
	}
	assert.Len(t, keys, 3)
}

func TestChatMembership(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	chat := &Chat{UserIDs: CanonicalPair(a, b)}

	assert.True(t, chat.HasMember(a))
	assert.True(t, chat.HasMember(b))
	assert.False(t, chat.HasMember(stranger))

	other, ok := chat.OtherMember(a)
	require.True(t, ok)
	assert.Equal(t, b, other)

	other, ok = chat.OtherMember(b)
	require.True(t, ok)
	assert.Equal(t, a, other)
}
