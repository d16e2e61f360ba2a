package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/provider"
	"github.com/sibarconnect/inbox-service/internal/repository"
)

// In-memory chat repository. GetOrCreate mirrors the upsert semantics: one
// row per (company, phone), names only fill null values. The linked stores
// are optional; when set, ListWithFilter predicates and cascade deletes
// consult the same data the SQL joins would.
type fakeChatRepo struct {
	mu     sync.Mutex
	nextID int64
	chats  map[int64]*domain.Chat

	messages  *fakeMessageRepo
	appts     *fakeAppointmentRepo
	tags      *fakeTagRepo
	pinSnooze *fakePinSnoozeRepo
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[int64]*domain.Chat{}}
}

func (f *fakeChatRepo) GetOrCreate(_ context.Context, companyID int64, phone string, name *string) (*domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, chat := range f.chats {
		if chat.CompanyID == companyID && chat.PhoneNumber == phone {
			if chat.CustomerName == nil && name != nil {
				chat.CustomerName = name
			}
			copied := *chat
			return &copied, nil
		}
	}
	f.nextID++
	chat := &domain.Chat{
		ID:              f.nextID,
		CompanyID:       companyID,
		PhoneNumber:     phone,
		CustomerName:    name,
		Status:          domain.ChatStatusActive,
		Priority:        domain.ChatPriorityLow,
		LastMessageTime: time.Now(),
		CreatedAt:       time.Now(),
	}
	f.chats[chat.ID] = chat
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) GetByID(_ context.Context, companyID, chatID int64) (*domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok || chat.CompanyID != companyID {
		return nil, pgx.ErrNoRows
	}
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) ListWithFilter(_ context.Context, companyID int64, filter repository.ChatFilter) ([]repository.ChatWithLastMessage, error) {
	f.mu.Lock()
	chats := make([]domain.Chat, 0, len(f.chats))
	for _, chat := range f.chats {
		if chat.CompanyID == companyID {
			chats = append(chats, *chat)
		}
	}
	f.mu.Unlock()

	now := time.Now()
	var out []repository.ChatWithLastMessage
	for _, chat := range chats {
		if filter.Status != nil && chat.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && chat.Priority != *filter.Priority {
			continue
		}
		if filter.LastDays != nil && chat.LastMessageTime.Before(now.AddDate(0, 0, -*filter.LastDays)) {
			continue
		}
		if filter.HasAppointment != nil && f.hasAppointment(chat) != *filter.HasAppointment {
			continue
		}
		if filter.HasResponse != nil && f.hasResponse(chat.ID) != *filter.HasResponse {
			continue
		}
		if filter.Search != nil && !f.matchesSearch(chat, *filter.Search) {
			continue
		}
		if len(filter.TagIDs) > 0 && !f.hasAnyTag(chat.ID, filter.TagIDs) {
			continue
		}
		if filter.ExcludeSnoozedForUserID != nil && f.snoozedPast(chat.ID, now) {
			continue
		}
		out = append(out, repository.ChatWithLastMessage{Chat: chat, LastMessage: f.lastMessage(chat.ID)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if filter.PinnedByUserID != nil {
			pi, pj := f.pinned(out[i].Chat.ID), f.pinned(out[j].Chat.ID)
			if pi != pj {
				return pi
			}
		}
		return out[i].Chat.LastMessageTime.After(out[j].Chat.LastMessageTime)
	})
	return out, nil
}

func (f *fakeChatRepo) lastMessage(chatID int64) *domain.Message {
	if f.messages == nil {
		return nil
	}
	msgs, _ := f.messages.ListByChat(context.Background(), chatID, 1)
	if len(msgs) == 0 {
		return nil
	}
	copied := msgs[0]
	return &copied
}

func (f *fakeChatRepo) hasAppointment(chat domain.Chat) bool {
	if f.appts == nil {
		return false
	}
	appts, _ := f.appts.ListByChat(context.Background(), chat.CompanyID, chat.ID)
	return len(appts) > 0
}

func (f *fakeChatRepo) hasResponse(chatID int64) bool {
	if f.messages == nil {
		return false
	}
	msgs, _ := f.messages.ListByChat(context.Background(), chatID, 0)
	for _, m := range msgs {
		if m.Direction == domain.DirectionOutgoing {
			return true
		}
	}
	return false
}

func (f *fakeChatRepo) matchesSearch(chat domain.Chat, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if chat.CustomerName != nil && strings.Contains(strings.ToLower(*chat.CustomerName), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(chat.PhoneNumber), needle) {
		return true
	}
	if f.messages != nil {
		msgs, _ := f.messages.ListByChat(context.Background(), chat.ID, 0)
		for _, m := range msgs {
			if strings.Contains(strings.ToLower(m.Content), needle) {
				return true
			}
		}
	}
	return false
}

func (f *fakeChatRepo) hasAnyTag(chatID int64, tagIDs []int64) bool {
	if f.tags == nil {
		return false
	}
	ids, _ := f.tags.ListChatTagIDs(context.Background(), chatID)
	for _, id := range ids {
		for _, want := range tagIDs {
			if id == want {
				return true
			}
		}
	}
	return false
}

func (f *fakeChatRepo) snoozedPast(chatID int64, now time.Time) bool {
	if f.pinSnooze == nil {
		return false
	}
	until, ok := f.pinSnooze.snoozes[chatID]
	return ok && until.After(now)
}

func (f *fakeChatRepo) pinned(chatID int64) bool {
	return f.pinSnooze != nil && f.pinSnooze.pins[chatID]
}

func (f *fakeChatRepo) Assign(ctx context.Context, companyID, chatID, userID int64, priority domain.ChatPriority) (*domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok || chat.CompanyID != companyID {
		return nil, pgx.ErrNoRows
	}
	chat.AssignedUserID = &userID
	chat.Priority = priority
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) SetStatus(_ context.Context, companyID, chatID int64, status domain.ChatStatus) (*domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok || chat.CompanyID != companyID {
		return nil, pgx.ErrNoRows
	}
	chat.Status = status
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) BulkUpdate(_ context.Context, companyID int64, chatIDs []int64, input repository.BulkUpdateInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for _, id := range chatIDs {
		chat, ok := f.chats[id]
		if !ok || chat.CompanyID != companyID {
			continue
		}
		if input.Status != nil {
			chat.Status = *input.Status
		}
		if input.Priority != nil {
			chat.Priority = *input.Priority
		}
		if input.AssignedUserID != nil {
			chat.AssignedUserID = input.AssignedUserID
		}
		updated++
	}
	return updated, nil
}

// Delete cascades into the linked stores the way the transactional SQL
// delete does.
func (f *fakeChatRepo) Delete(_ context.Context, companyID, chatID int64) error {
	f.mu.Lock()
	chat, ok := f.chats[chatID]
	if !ok || chat.CompanyID != companyID {
		f.mu.Unlock()
		return pgx.ErrNoRows
	}
	delete(f.chats, chatID)
	f.mu.Unlock()

	if f.messages != nil {
		f.messages.deleteByChat(chatID)
	}
	if f.appts != nil {
		f.appts.deleteByChat(chatID)
	}
	if f.tags != nil {
		f.tags.deleteChat(chatID)
	}
	if f.pinSnooze != nil {
		f.pinSnooze.deleteChat(chatID)
	}
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []domain.Message
	failWith error
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	msg.ID = f.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) ListByChat(_ context.Context, chatID int64, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ChatID != chatID {
			continue
		}
		out = append(out, f.messages[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) deleteByChat(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ChatID != chatID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
}

func (f *fakeMessageRepo) UpdateStatusByProviderID(_ context.Context, providerID string, status domain.DeliveryStatus) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ProviderMessageID != nil && *f.messages[i].ProviderMessageID == providerID {
			f.messages[i].Status = status
			copied := f.messages[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	appts  []domain.Appointment
}

func (f *fakeAppointmentRepo) slotTaken(companyID, userID int64, startAt time.Time, exceptID int64) bool {
	for _, a := range f.appts {
		if a.ID != exceptID && a.CompanyID == companyID && a.AssignedUserID == userID && a.StartAt.Equal(startAt) {
			return true
		}
	}
	return false
}

func (f *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotTaken(appt.CompanyID, appt.AssignedUserID, appt.StartAt, 0) {
		return repository.ErrSlotConflict
	}
	f.nextID++
	appt.ID = f.nextID
	appt.CreatedAt = time.Now()
	f.appts = append(f.appts, *appt)
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, companyID, id int64) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID == id && a.CompanyID == companyID {
			copied := a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAppointmentRepo) FindBySlot(_ context.Context, companyID, userID int64, startAt time.Time) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.CompanyID == companyID && a.AssignedUserID == userID && a.StartAt.Equal(startAt) {
			copied := a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAppointmentRepo) Update(_ context.Context, appt *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotTaken(appt.CompanyID, appt.AssignedUserID, appt.StartAt, appt.ID) {
		return repository.ErrSlotConflict
	}
	for i := range f.appts {
		if f.appts[i].ID == appt.ID {
			f.appts[i] = *appt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAppointmentRepo) ListByChat(_ context.Context, companyID, chatID int64) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.appts {
		if a.CompanyID == companyID && a.ChatID == chatID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByUserBetween(_ context.Context, companyID, userID int64, from, to time.Time) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.appts {
		if a.CompanyID == companyID && a.AssignedUserID == userID && !a.StartAt.Before(from) && a.StartAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) deleteByChat(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.appts[:0]
	for _, a := range f.appts {
		if a.ChatID != chatID {
			kept = append(kept, a)
		}
	}
	f.appts = kept
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, companyID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appts {
		if f.appts[i].ID == id && f.appts[i].CompanyID == companyID {
			f.appts = append(f.appts[:i], f.appts[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTagRepo struct {
	mu       sync.Mutex
	chatTags map[int64][]int64
	bulkSets int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{chatTags: map[int64][]int64{}}
}

func (f *fakeTagRepo) ListByCompany(context.Context, int64) ([]domain.ChatTag, error) {
	return nil, nil
}

func (f *fakeTagRepo) Create(_ context.Context, companyID int64, name string) (*domain.ChatTag, error) {
	return &domain.ChatTag{ID: 1, CompanyID: companyID, Name: name}, nil
}

func (f *fakeTagRepo) Delete(context.Context, int64, int64) error { return nil }

func (f *fakeTagRepo) SetChatTags(_ context.Context, chatID int64, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatTags[chatID] = append([]int64(nil), tagIDs...)
	return nil
}

func (f *fakeTagRepo) ListChatTagIDs(_ context.Context, chatID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatTags[chatID], nil
}

func (f *fakeTagRepo) deleteChat(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chatTags, chatID)
}

func (f *fakeTagRepo) BulkSetTags(_ context.Context, chatIDs, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkSets++
	for _, chatID := range chatIDs {
		f.chatTags[chatID] = append([]int64(nil), tagIDs...)
	}
	return nil
}

type fakeNoteRepo struct {
	notes []domain.ChatNote
}

func (f *fakeNoteRepo) Create(_ context.Context, note *domain.ChatNote) error {
	note.ID = int64(len(f.notes) + 1)
	note.CreatedAt = time.Now()
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeNoteRepo) ListByChat(_ context.Context, companyID, chatID int64) ([]domain.ChatNote, error) {
	var out []domain.ChatNote
	for _, n := range f.notes {
		if n.CompanyID == companyID && n.ChatID == chatID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakePinSnoozeRepo struct {
	pins    map[int64]bool
	snoozes map[int64]time.Time
}

func newFakePinSnoozeRepo() *fakePinSnoozeRepo {
	return &fakePinSnoozeRepo{pins: map[int64]bool{}, snoozes: map[int64]time.Time{}}
}

func (f *fakePinSnoozeRepo) Pin(_ context.Context, chatID, _ int64) error {
	f.pins[chatID] = true
	return nil
}

func (f *fakePinSnoozeRepo) Unpin(_ context.Context, chatID, _ int64) error {
	delete(f.pins, chatID)
	return nil
}

func (f *fakePinSnoozeRepo) Snooze(_ context.Context, chatID, _ int64, untilAt time.Time) error {
	f.snoozes[chatID] = untilAt
	return nil
}

func (f *fakePinSnoozeRepo) Unsnooze(_ context.Context, chatID, _ int64) error {
	delete(f.snoozes, chatID)
	return nil
}

func (f *fakePinSnoozeRepo) deleteChat(chatID int64) {
	delete(f.pins, chatID)
	delete(f.snoozes, chatID)
}

type fakeAuditRepo struct {
	entries  []domain.ChatAudit
	failWith error
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.ChatAudit) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByChat(_ context.Context, companyID, chatID int64, _ int) ([]domain.ChatAudit, error) {
	var out []domain.ChatAudit
	for _, e := range f.entries {
		if e.CompanyID == companyID && e.ChatID == chatID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCompanyRepo struct {
	companies map[int64]*domain.Company
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return company, nil
}

func (f *fakeCompanyRepo) GetByWhatsAppNumber(_ context.Context, phone string) (*domain.Company, error) {
	for _, company := range f.companies {
		if company.WhatsAppPhoneNumber != nil && *company.WhatsAppPhoneNumber == phone {
			return company, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type providerCall struct {
	to  string
	msg provider.OutboundMessage
}

type fakeProvider struct {
	calls    []providerCall
	failWith error
}

func (f *fakeProvider) SendMessage(_ context.Context, _ provider.Credentials, to string, msg provider.OutboundMessage) (*provider.SendResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.calls = append(f.calls, providerCall{to: to, msg: msg})
	return &provider.SendResult{ProviderMessageID: "prov-1", WAMID: "wamid-1"}, nil
}

func (f *fakeProvider) SendTemplate(_ context.Context, _ provider.Credentials, to, templateName, _ string, _ []string) (*provider.SendResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.calls = append(f.calls, providerCall{to: to, msg: provider.OutboundMessage{Type: domain.MessageTypeTemplate, Body: templateName}})
	return &provider.SendResult{ProviderMessageID: "prov-t", WAMID: "wamid-t"}, nil
}

func (f *fakeProvider) TestConnection(context.Context, provider.Credentials) error {
	return f.failWith
}

type publishedEvent struct {
	kind      string
	companyID int64
	chatID    int64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) MessageCreated(companyID int64, msg *domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{"message.created", companyID, msg.ChatID})
}

func (f *fakePublisher) ChatUpdated(companyID, chatID int64, _ *domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{"chat.updated", companyID, chatID})
}

var errBoom = errors.New("boom")
