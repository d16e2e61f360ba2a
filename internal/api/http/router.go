package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/api/http/handlers"
	"github.com/sibarconnect/inbox-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Chats          *handlers.ChatsHandler
	Messages       *handlers.MessagesHandler
	TagsNotes      *handlers.TagsNotesHandler
	Appointments   *handlers.AppointmentsHandler
	Summaries      *handlers.SummariesHandler
	Webhooks       *handlers.WebhooksHandler
	Realtime       *handlers.RealtimeHandler
	AuthMiddleware *auth.AuthMiddleware
	MediaDir       string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	app.Post("/webhooks/ycloud", cfg.Webhooks.HandleYCloud)

	if cfg.MediaDir != "" {
		app.Static("/"+cfg.MediaDir, "./"+cfg.MediaDir)
	}

	ws := app.Group("/ws", cfg.Realtime.Upgrade)
	ws.Get("/:companyID", cfg.Realtime.CompanyStream())
	ws.Get("/:companyID/:chatID", cfg.Realtime.ChatStream())

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	chats := api.Group("/chats")
	chats.Get("", cfg.Chats.ListChats)
	chats.Post("/bulk", cfg.Chats.BulkUpdate)
	chats.Post("/start", cfg.Messages.StartChat)
	chats.Post("/start-template", cfg.Messages.StartTemplate)
	chats.Post("/import", cfg.Messages.ImportChat)
	chats.Get("/:id", cfg.Chats.GetChat)
	chats.Delete("/:id", cfg.Chats.DeleteChat)
	chats.Put("/:id/assign", cfg.Chats.AssignChat)
	chats.Put("/:id/status", cfg.Chats.SetStatus)
	chats.Post("/:id/pin", cfg.Chats.PinChat)
	chats.Delete("/:id/pin", cfg.Chats.UnpinChat)
	chats.Post("/:id/snooze", cfg.Chats.SnoozeChat)
	chats.Delete("/:id/snooze", cfg.Chats.UnsnoozeChat)
	chats.Get("/:id/messages", cfg.Messages.ListMessages)
	chats.Post("/:id/messages", cfg.Messages.SendMessage)
	chats.Get("/:id/tags", cfg.TagsNotes.ListChatTags)
	chats.Put("/:id/tags", cfg.TagsNotes.SetChatTags)
	chats.Get("/:id/notes", cfg.TagsNotes.ListNotes)
	chats.Post("/:id/notes", cfg.TagsNotes.AddNote)
	chats.Get("/:id/audit", cfg.TagsNotes.ListAudit)
	chats.Get("/:id/appointments", cfg.Appointments.ListByChat)
	chats.Get("/:id/summary", cfg.Summaries.Get)
	chats.Post("/:id/summary", cfg.Summaries.Generate)

	tags := api.Group("/tags")
	tags.Get("", cfg.TagsNotes.ListTags)
	tags.Post("", cfg.TagsNotes.CreateTag)
	tags.Delete("/:id", cfg.TagsNotes.DeleteTag)

	appointments := api.Group("/appointments")
	appointments.Get("/free-slots", cfg.Appointments.SuggestFreeSlots)
	appointments.Post("", cfg.Appointments.Create)
	appointments.Put("/:id", cfg.Appointments.Update)
	appointments.Delete("/:id", cfg.Appointments.Delete)
}
