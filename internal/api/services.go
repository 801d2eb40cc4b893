package api

import "github.com/lifocus/lifocus-server/internal/service"

// Services groups the business services the handlers call.
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Project *service.ProjectService
	Note    *service.NoteService
	Import  *service.ImportService
	Export  *service.ExportService
}
