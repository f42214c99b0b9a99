package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/models"
	"charaverse-api/services"
	"charaverse-api/testutil"
)

func newMessageSetup(t *testing.T) (*services.MessageService, *services.RelationshipService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	users := []models.User{
		{ID: userAlice, Name: "Alice", Handle: "alice", Email: "alice@example.com", Password: "x"},
		{ID: userBob, Name: "Bob", Handle: "bob", Email: "bob@example.com", Password: "x"},
		{ID: userCarol, Name: "Carol", Handle: "carol", Email: "carol@example.com", Password: "x"},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}

	webhook := services.NewWebhookService("", zap.NewNop())
	msgSvc := services.NewMessageService(db, webhook, zap.NewNop())
	relSvc := services.NewRelationshipService(db, webhook, zap.NewNop())
	return msgSvc, relSvc, db
}

func approveRelationship(t *testing.T, relSvc *services.RelationshipService, c1, c2 uint, proposer, approver string) {
	t.Helper()
	rel, err := relSvc.Propose(services.ProposeRelationshipInput{
		Character1ID: c1,
		Character2ID: c2,
		Type:         "allies",
		Status:       models.RelationshipStatusPositive,
	}, proposer)
	require.NoError(t, err)
	_, err = relSvc.Approve(rel.ID, approver)
	require.NoError(t, err)
}

func createMessageAt(t *testing.T, db *gorm.DB, senderID, receiverID uint, at time.Time, read bool) *models.Message {
	t.Helper()
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: &receiverID,
		Content:    "hello",
		IsRead:     read,
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

// ---- CanMessage ----

func TestCanMessageOwnCharacters(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userAlice, "Briar")

	gate, err := msgSvc.CanMessage(a, b, userAlice)
	require.NoError(t, err)
	assert.True(t, gate.Allowed)
	assert.Empty(t, gate.Reason)
}

func TestCanMessageRequiresApprovedRelationship(t *testing.T) {
	msgSvc, relSvc, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userBob, "Basil")

	// No relationship at all
	gate, err := msgSvc.CanMessage(a, b, userAlice)
	require.NoError(t, err)
	assert.False(t, gate.Allowed)
	assert.Equal(t, services.ReasonRelationshipRequired, gate.Reason)

	// Pending is not enough
	rel, err := relSvc.Propose(services.ProposeRelationshipInput{
		Character1ID: a.ID,
		Character2ID: b.ID,
		Type:         "allies",
	}, userAlice)
	require.NoError(t, err)

	gate, err = msgSvc.CanMessage(a, b, userAlice)
	require.NoError(t, err)
	assert.False(t, gate.Allowed)

	// Approved opens the gate, in either direction
	_, err = relSvc.Approve(rel.ID, userBob)
	require.NoError(t, err)

	gate, err = msgSvc.CanMessage(a, b, userAlice)
	require.NoError(t, err)
	assert.True(t, gate.Allowed)

	gate, err = msgSvc.CanMessage(b, a, userBob)
	require.NoError(t, err)
	assert.True(t, gate.Allowed)
}

// ---- Send ----

func TestSendWithoutRelationshipIsAllowed(t *testing.T) {
	// The gate is advisory: sending only needs sender ownership and an
	// existing receiver.
	msgSvc, _, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userBob, "Basil")

	msg, err := msgSvc.Send(a.ID, b.ID, "unsolicited hello", userAlice)
	require.NoError(t, err)
	require.NotNil(t, msg.ReceiverID)
	assert.Equal(t, b.ID, *msg.ReceiverID)
	assert.False(t, msg.IsRead)
	assert.Nil(t, msg.GroupID)
}

func TestSendOwnershipAndExistence(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userBob, "Basil")

	_, err := msgSvc.Send(a.ID, b.ID, "hi", userBob)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = msgSvc.Send(a.ID, 9999, "hi", userAlice)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = msgSvc.Send(a.ID, b.ID, "", userAlice)
	assert.ErrorIs(t, err, services.ErrValidation)
}

// ---- Inbox ----

func TestInboxKeepsLaterTimestampAcrossDirections(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	t1 := time.Now().Add(-2 * time.Hour)
	t2 := time.Now().Add(-1 * time.Hour)
	createMessageAt(t, db, c.ID, d.ID, t1, true)
	createMessageAt(t, db, d.ID, c.ID, t2, true)

	inbox, err := msgSvc.Inbox(c.ID, userAlice)
	require.NoError(t, err)
	require.Len(t, inbox.Conversations, 1)

	entry := inbox.Conversations[0]
	assert.Equal(t, d.ID, entry.Partner.ID)
	assert.WithinDuration(t, t2, entry.LastMessageAt, time.Second)
}

func TestInboxUnreadCounts(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")
	e := createCharacter(t, db, userBob, "Elder")
	f := createCharacter(t, db, userCarol, "Fern")

	now := time.Now()
	// 2 unread from D, and some noise C sent to D
	createMessageAt(t, db, d.ID, c.ID, now.Add(-50*time.Minute), false)
	createMessageAt(t, db, d.ID, c.ID, now.Add(-40*time.Minute), false)
	createMessageAt(t, db, c.ID, d.ID, now.Add(-30*time.Minute), true)
	// 3 unread from E
	createMessageAt(t, db, e.ID, c.ID, now.Add(-20*time.Minute), false)
	createMessageAt(t, db, e.ID, c.ID, now.Add(-15*time.Minute), false)
	createMessageAt(t, db, e.ID, c.ID, now.Add(-10*time.Minute), false)
	// F only ever received from C
	createMessageAt(t, db, c.ID, f.ID, now.Add(-5*time.Minute), false)

	inbox, err := msgSvc.Inbox(c.ID, userAlice)
	require.NoError(t, err)
	require.Len(t, inbox.Conversations, 3)
	assert.Equal(t, 5, inbox.TotalUnread)

	unreadByPartner := map[uint]int{}
	for _, conv := range inbox.Conversations {
		unreadByPartner[conv.Partner.ID] = conv.UnreadCount
	}
	assert.Equal(t, 2, unreadByPartner[d.ID])
	assert.Equal(t, 3, unreadByPartner[e.ID])
	assert.Equal(t, 0, unreadByPartner[f.ID])

	// Sorted by recency: F, then E, then D
	assert.Equal(t, f.ID, inbox.Conversations[0].Partner.ID)
	assert.Equal(t, e.ID, inbox.Conversations[1].Partner.ID)
	assert.Equal(t, d.ID, inbox.Conversations[2].Partner.ID)
}

func TestInboxExcludesSoftDeleted(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	now := time.Now()
	createMessageAt(t, db, d.ID, c.ID, now.Add(-time.Hour), false)
	deleted := createMessageAt(t, db, d.ID, c.ID, now.Add(-time.Minute), false)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)

	inbox, err := msgSvc.Inbox(c.ID, userAlice)
	require.NoError(t, err)
	require.Len(t, inbox.Conversations, 1)

	entry := inbox.Conversations[0]
	assert.Equal(t, 1, entry.UnreadCount)
	assert.Equal(t, 1, inbox.TotalUnread)
	// The deleted message never sets the recency timestamp
	assert.WithinDuration(t, now.Add(-time.Hour), entry.LastMessageAt, time.Second)
}

func TestInboxOwnershipChecks(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")

	_, err := msgSvc.Inbox(c.ID, userBob)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = msgSvc.Inbox(9999, userAlice)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

// ---- Conversation ----

func TestConversationMarksPartnerMessagesRead(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")
	e := createCharacter(t, db, userBob, "Elder")

	now := time.Now()
	createMessageAt(t, db, d.ID, c.ID, now.Add(-30*time.Minute), false)
	createMessageAt(t, db, d.ID, c.ID, now.Add(-20*time.Minute), false)
	createMessageAt(t, db, e.ID, c.ID, now.Add(-10*time.Minute), false)

	view, err := msgSvc.Conversation(c.ID, d.ID, userAlice)
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	for _, m := range view.Messages {
		assert.True(t, m.IsRead)
	}

	// D is read now, E untouched
	inbox, err := msgSvc.Inbox(c.ID, userAlice)
	require.NoError(t, err)
	assert.Equal(t, 1, inbox.TotalUnread)
	for _, conv := range inbox.Conversations {
		if conv.Partner.ID == d.ID {
			assert.Equal(t, 0, conv.UnreadCount)
		}
		if conv.Partner.ID == e.ID {
			assert.Equal(t, 1, conv.UnreadCount)
		}
	}
}

func TestConversationExcludesDeletedAndCarriesGate(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	now := time.Now()
	createMessageAt(t, db, d.ID, c.ID, now.Add(-20*time.Minute), false)
	deleted := createMessageAt(t, db, d.ID, c.ID, now.Add(-10*time.Minute), false)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)

	view, err := msgSvc.Conversation(c.ID, d.ID, userAlice)
	require.NoError(t, err)
	assert.Len(t, view.Messages, 1)

	// No approved relationship: composer hidden, reason surfaced
	assert.False(t, view.CanCompose)
	assert.Equal(t, services.ReasonRelationshipRequired, view.Reason)
}

func TestConversationComposerOpenWithRelationship(t *testing.T) {
	msgSvc, relSvc, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	approveRelationship(t, relSvc, c.ID, d.ID, userAlice, userBob)

	view, err := msgSvc.Conversation(c.ID, d.ID, userAlice)
	require.NoError(t, err)
	assert.True(t, view.CanCompose)
	assert.Empty(t, view.Reason)
}

// ---- Delete ----

func TestDeleteSoftDeletesOnly(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	msg := createMessageAt(t, db, d.ID, c.ID, time.Now(), false)

	// The receiver's owner may delete
	require.NoError(t, msgSvc.Delete(msg.ID, userAlice))

	var stored models.Message
	require.NoError(t, db.First(&stored, msg.ID).Error)
	assert.True(t, stored.IsDeleted)

	view, err := msgSvc.Conversation(c.ID, d.ID, userAlice)
	require.NoError(t, err)
	assert.Empty(t, view.Messages)
}

func TestDeleteByOutsiderForbidden(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	c := createCharacter(t, db, userAlice, "Clover")
	d := createCharacter(t, db, userBob, "Dahlia")

	msg := createMessageAt(t, db, c.ID, d.ID, time.Now(), false)

	assert.ErrorIs(t, msgSvc.Delete(msg.ID, userCarol), services.ErrForbidden)
}

// ---- Groups ----

func TestSendToGroupRequiresMembership(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userBob, "Basil")

	group := models.GroupConversation{Name: "The Tavern", InviteCode: "tavern123", CreatedByID: a.ID}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, CharacterID: a.ID}).Error)

	msg, err := msgSvc.SendToGroup(a.ID, group.ID, "evening, all", userAlice)
	require.NoError(t, err)
	require.NotNil(t, msg.GroupID)
	assert.Equal(t, group.ID, *msg.GroupID)
	assert.Nil(t, msg.ReceiverID)

	_, err = msgSvc.SendToGroup(b.ID, group.ID, "let me in", userBob)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestGroupMessagesInvisibleToDirectConversations(t *testing.T) {
	msgSvc, _, db := newMessageSetup(t)
	a := createCharacter(t, db, userAlice, "Aster")
	b := createCharacter(t, db, userBob, "Basil")

	group := models.GroupConversation{Name: "The Tavern", InviteCode: "tavern456", CreatedByID: a.ID}
	require.NoError(t, db.Create(&group).Error)
	for _, id := range []uint{a.ID, b.ID} {
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, CharacterID: id}).Error)
	}

	_, err := msgSvc.SendToGroup(b.ID, group.ID, "tavern talk", userBob)
	require.NoError(t, err)

	// Group traffic never shows up in the pairwise view or the inbox
	view, err := msgSvc.Conversation(a.ID, b.ID, userAlice)
	require.NoError(t, err)
	assert.Empty(t, view.Messages)

	inbox, err := msgSvc.Inbox(a.ID, userAlice)
	require.NoError(t, err)
	assert.Empty(t, inbox.Conversations)
	assert.Zero(t, inbox.TotalUnread)
}
