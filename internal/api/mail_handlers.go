package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/service/contact"
	"github.com/ignite/massmail/internal/service/mail"
	"github.com/ignite/massmail/internal/session"
)

type scheduleRequest struct {
	mail.ComposeInput
	FireAt time.Time `json:"schedule_time"`
}

// withSessionSender fills a blank sender from the session selection.
func withSessionSender(r *http.Request, in *mail.ComposeInput) {
	if strings.TrimSpace(in.SenderRef) != "" {
		return
	}
	if s, ok := session.FromContext(r.Context()); ok {
		in.SenderRef = s.SelectedSender
	}
}

// SendMail composes and sends a message through the mail API.
//
//	POST /api/mail/send
func (h *Handlers) SendMail(w http.ResponseWriter, r *http.Request) {
	var in mail.ComposeInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	withSessionSender(r, &in)

	report, err := h.mail.Send(r.Context(), in)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Success(w, "Email sent", report)
}

// ScheduleMail stores a message to be sent at schedule_time.
//
//	POST /api/mail/schedule
func (h *Handlers) ScheduleMail(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.FireAt.IsZero() {
		httputil.BadRequest(w, "schedule_time is required")
		return
	}
	withSessionSender(r, &req.ComposeInput)

	rec, err := h.schedule.Schedule(r.Context(), req.ComposeInput, req.FireAt)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, "Email scheduled", rec)
}

// ParseRecipients turns an uploaded CSV (field "file") with a username
// column into a recipient list for the cc or bcc fields.
//
//	POST /api/recipients/parse
func (h *Handlers) ParseRecipients(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "a CSV file is required in field \"file\"")
		return
	}
	defer file.Close()

	names, err := contact.ReadUsernames(file)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	addrs := domain.UniqueRecipients(names)
	httputil.OK(w, map[string]any{
		"recipients": domain.JoinRecipients(addrs),
		"count":      len(addrs),
	})
}
