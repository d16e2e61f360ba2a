package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

func TestBuildChatListQueryNoFilters(t *testing.T) {
	query, args := buildChatListQuery(7, ChatFilter{})

	require.Equal(t, []any{int64(7)}, args)
	assert.Contains(t, query, "c.company_id=$1")
	assert.Contains(t, query, "LEFT JOIN LATERAL")
	assert.Contains(t, query, "ORDER BY c.last_message_time DESC")
	assert.NotContains(t, query, "chat_pins")
	assert.NotContains(t, query, "chat_snoozes")
}

func TestBuildChatListQueryAllFilters(t *testing.T) {
	status := domain.ChatStatusActive
	priority := domain.ChatPriorityHigh
	lastDays := 7
	hasAppt := true
	hasResp := false
	search := "  Ana  "
	userID := int64(42)

	query, args := buildChatListQuery(1, ChatFilter{
		Status:                  &status,
		Priority:                &priority,
		LastDays:                &lastDays,
		HasAppointment:          &hasAppt,
		HasResponse:             &hasResp,
		Search:                  &search,
		TagIDs:                  []int64{3, 4},
		ExcludeSnoozedForUserID: &userID,
		PinnedByUserID:          &userID,
	})

	assert.Contains(t, query, "c.status=$2")
	assert.Contains(t, query, "c.priority=$3")
	assert.Contains(t, query, "make_interval(days => $4)")
	assert.Contains(t, query, "EXISTS (SELECT 1 FROM appointments")
	assert.Contains(t, query, "NOT EXISTS (SELECT 1 FROM messages")
	assert.Contains(t, query, "tm.tag_id = ANY($6)")
	assert.Contains(t, query, "chat_snoozes")
	assert.Contains(t, query, "s.until_at > NOW()")
	assert.Contains(t, query, "CASE WHEN EXISTS (SELECT 1 FROM chat_pins")

	// Search term is lowercased, trimmed and wrapped for LIKE.
	assert.Contains(t, args, "%ana%")
	assert.Len(t, args, 8)
}

func TestBuildChatListQueryHasAppointmentNegated(t *testing.T) {
	hasAppt := false
	query, _ := buildChatListQuery(1, ChatFilter{HasAppointment: &hasAppt})
	assert.Contains(t, query, "NOT EXISTS (SELECT 1 FROM appointments")
}

func TestBuildChatListQueryBlankSearchIgnored(t *testing.T) {
	search := "   "
	query, args := buildChatListQuery(1, ChatFilter{Search: &search})
	assert.NotContains(t, query, "LIKE")
	assert.Len(t, args, 1)
}

func TestBuildChatListQueryPlaceholdersMatchArgs(t *testing.T) {
	status := domain.ChatStatusPending
	lastDays := 30
	userID := int64(9)
	query, args := buildChatListQuery(2, ChatFilter{
		Status:                  &status,
		LastDays:                &lastDays,
		ExcludeSnoozedForUserID: &userID,
	})

	for i := 1; i <= len(args); i++ {
		assert.Contains(t, query, "$"+string(rune('0'+i)))
	}
	assert.False(t, strings.Contains(query, "$0"))
}
