package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineTicketMessage(t *testing.T) {
	d := TicketDetails{
		Name:      "Rina",
		TicketID:  "abc",
		EventName: "Jazz <Night>",
		Date:      time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Location:  "Hall A",
		Quantity:  2,
	}

	msg := OfflineTicket("rina@example.com", d, []byte{0x89, 'P', 'N', 'G'}, d.Date)

	assert.Equal(t, "rina@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Jazz <Night>")
	assert.Contains(t, msg.HTML, "Jazz &lt;Night&gt;")
	assert.Contains(t, msg.HTML, "Hall A")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "ticket-abc.png", msg.Attachments[0].Name)
}

func TestOTPMessages(t *testing.T) {
	v := VerifyOTP("a@b.c", "A", "123456", 24*time.Hour)
	assert.Contains(t, v.HTML, "123456")
	assert.Contains(t, v.Text, "123456")

	r := ResetOTP("a@b.c", "A", "654321", 15*time.Minute)
	assert.Contains(t, r.HTML, "654321")
	assert.Contains(t, r.HTML, "15m0s")
}

func TestSMTPMailerBuild(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", FromName: "SiEvent"})
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Nil(t, m.auth)

	mail := m.build(OnlineTicket("a@b.c", TicketDetails{EventName: "Webinar"}, "https://meet.example.com/x"))
	buf, err := mail.MimeBuf()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Your ticket for Webinar")
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.c", Subject: "hi"}))
	assert.Contains(t, buf.String(), "a@b.c")
}
