package handlers

import (
	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/repository"
)

func chatResponse(chat *domain.Chat) dto.ChatResponse {
	return dto.ChatResponse{
		ID:              chat.ID,
		CompanyID:       chat.CompanyID,
		PhoneNumber:     chat.PhoneNumber,
		CustomerName:    chat.CustomerName,
		AssignedUserID:  chat.AssignedUserID,
		Status:          chat.Status,
		Priority:        chat.Priority,
		LastMessageTime: chat.LastMessageTime,
		CreatedAt:       chat.CreatedAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:            msg.ID,
		ChatID:        msg.ChatID,
		Content:       msg.Content,
		MessageType:   msg.MessageType,
		Direction:     msg.Direction,
		SenderName:    msg.SenderName,
		UserID:        msg.UserID,
		Status:        msg.Status,
		AttachmentURL: msg.AttachmentURL,
		CreatedAt:     msg.CreatedAt,
	}
}

func chatListItem(row *repository.ChatWithLastMessage) dto.ChatListItem {
	item := dto.ChatListItem{
		Chat:        chatResponse(&row.Chat),
		UnreadCount: row.UnreadCount,
	}
	if row.LastMessage != nil {
		resp := messageResponse(row.LastMessage)
		item.LastMessage = &resp
	}
	return item
}

func tagResponse(tag *domain.ChatTag) dto.TagResponse {
	return dto.TagResponse{ID: tag.ID, Name: tag.Name, CreatedAt: tag.CreatedAt}
}

func noteResponse(note *domain.ChatNote) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        note.ID,
		ChatID:    note.ChatID,
		UserID:    note.UserID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}
}

func appointmentResponse(appt *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:        appt.ID,
		ChatID:    appt.ChatID,
		UserID:    appt.AssignedUserID,
		StartAt:   appt.StartAt,
		CreatedAt: appt.CreatedAt,
	}
}

func summaryResponse(summary *domain.ChatSummary) dto.SummaryResponse {
	return dto.SummaryResponse{
		ChatID:    summary.ChatID,
		Summary:   summary.Summary,
		Interest:  string(summary.Interest),
		Model:     summary.Model,
		CreatedAt: summary.CreatedAt,
		UpdatedAt: summary.UpdatedAt,
	}
}

func auditResponse(entry *domain.ChatAudit) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:        entry.ID,
		ChatID:    entry.ChatID,
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
}
